package model

// MatchType is the corpus collection a context match came from.
type MatchType string

const (
	MatchEmail    MatchType = "email"
	MatchDoc      MatchType = "doc"
	MatchCalendar MatchType = "calendar"
	MatchSlack    MatchType = "slack"
)

// MatchTypes is the order context:match events are emitted in.
var MatchTypes = []MatchType{MatchEmail, MatchDoc, MatchCalendar, MatchSlack}

type ContextMatch struct {
	ID             string    `json:"id"`
	MatchType      MatchType `json:"matchType"`
	Title          string    `json:"title"`
	Preview        string    `json:"preview"`
	From           string    `json:"from,omitempty"`
	Date           string    `json:"date,omitempty"`
	Channel        string    `json:"channel,omitempty"`
	AvatarColor    string    `json:"avatarColor,omitempty"`
	FileType       string    `json:"fileType,omitempty"`
	RelevanceScore float64   `json:"relevanceScore"`
}

type ContextResponse struct {
	Matches []ContextMatch `json:"matches"`
}
