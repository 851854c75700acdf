package model

import "encoding/json"

// EventName is the discriminator of a broadcast envelope.
type EventName string

const (
	EventTranscriptUpdate EventName = "transcript:update"
	EventChartRender      EventName = "chart:render"
	EventReferenceFound   EventName = "reference:found"
	EventContextMatch     EventName = "context:match"
	EventSummaryUpdate    EventName = "summary:update"
	EventAgentStatus      EventName = "agent:status"
	EventError            EventName = "error"
	EventSessionStart     EventName = "session:start"
	EventSessionEnd       EventName = "session:end"
)

// Envelope is the wire format of every server to viewer message.
type Envelope struct {
	Event     EventName `json:"event"`
	SessionID string    `json:"sessionId"`
	Timestamp int64     `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ClientMessage is a viewer to server control message. Timestamp stays a
// float so any JSON number is accepted.
type ClientMessage struct {
	Event     string          `json:"event"`
	SessionID string          `json:"sessionId"`
	Timestamp float64         `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type AgentStatus string

const (
	StatusProcessing AgentStatus = "processing"
	StatusComplete   AgentStatus = "complete"
	StatusError      AgentStatus = "error"
)

type AgentStatusPayload struct {
	Agent   AgentName   `json:"agent"`
	Status  AgentStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

type ChartPayload struct {
	MermaidCode   string    `json:"mermaidCode"`
	ChartType     ChartType `json:"chartType"`
	Title         string    `json:"title"`
	SourceExcerpt string    `json:"sourceExcerpt"`
	Narration     string    `json:"narration"`
}

type ContextPayload struct {
	MatchType MatchType      `json:"matchType"`
	Matches   []ContextMatch `json:"matches"`
}

type BulletUpdate struct {
	SummaryBullet
	IsNew bool `json:"isNew"`
}

type SummaryPayload struct {
	Bullets []BulletUpdate `json:"bullets"`
	Total   int            `json:"total"`
}

type TranscriptPayload struct {
	Text      string `json:"text"`
	IsFinal   bool   `json:"isFinal"`
	Timestamp int64  `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Agent   AgentName `json:"agent,omitempty"`
}

// NewSummaryPayload marks every bullet in accepted as new.
func NewSummaryPayload(accepted []SummaryBullet, total int) SummaryPayload {
	updates := make([]BulletUpdate, 0, len(accepted))
	for _, b := range accepted {
		updates = append(updates, BulletUpdate{SummaryBullet: b, IsNew: true})
	}
	return SummaryPayload{Bullets: updates, Total: total}
}
