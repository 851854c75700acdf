package model

// SourceConfidence grades how well a source backs the spoken claim.
type SourceConfidence string

const (
	ConfidenceVerified   SourceConfidence = "verified"
	ConfidencePartial    SourceConfidence = "partial"
	ConfidenceUnverified SourceConfidence = "unverified"
)

func (c SourceConfidence) Valid() bool {
	switch c {
	case ConfidenceVerified, ConfidencePartial, ConfidenceUnverified:
		return true
	}
	return false
}

type Source struct {
	Title      string           `json:"title"`
	URL        string           `json:"url"`
	Snippet    string           `json:"snippet"`
	Confidence SourceConfidence `json:"confidence"`
	Domain     string           `json:"domain"`
}

type ReferenceResponse struct {
	Sources []Source `json:"sources"`
	Query   string   `json:"query"`
}
