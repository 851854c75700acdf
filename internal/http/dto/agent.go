package dto

import "github.com/avishaychauhan/EchoLabs/internal/model"

// SweepMode marks a summary request as a full-transcript sweep.
const SweepMode = "sweep"

// SweepRequest is the alternative body accepted by the summary route.
type SweepRequest struct {
	Mode           string `json:"mode"`
	FullTranscript string `json:"fullTranscript"`
	SessionID      string `json:"sessionId"`
}

type ChunkResponse struct {
	Appended    bool                     `json:"appended"`
	FinalChunks int                      `json:"finalChunks"`
	Intents     []model.ClassifiedIntent `json:"intents"`
	Dispatched  []string                 `json:"dispatched"`
}

type BulletsResponse struct {
	Bullets []model.SummaryBullet `json:"bullets"`
}

type SummarizeRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
	Demo    bool   `json:"demo,omitempty"`
}
