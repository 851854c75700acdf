package reference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

var errUnknownShape = errors.New("reference response is neither an object nor an array")

// candidate is one source as the backend wrote it. Every field is optional on
// the wire; normalize decides what survives.
type candidate struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet"`
	Confidence string `json:"confidence"`
	Domain     string `json:"domain"`
}

// answerKind names the accepted response shapes.
type answerKind int

const (
	answerSingle answerKind = iota + 1
	answerList
)

// answer is the decoded backend response: exactly one of Single or List is
// meaningful, selected by Kind.
type answer struct {
	Kind   answerKind
	Single candidate
	List   []candidate
}

func (a *answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errUnknownShape
	}

	switch trimmed[0] {
	case '{':
		a.Kind = answerSingle
		return json.Unmarshal(trimmed, &a.Single)
	case '[':
		a.Kind = answerList
		return json.Unmarshal(trimmed, &a.List)
	default:
		return errUnknownShape
	}
}

func decodeAnswer(raw string) (answer, error) {
	var a answer
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return answer{}, fmt.Errorf("decode reference: %w", err)
	}
	return a, nil
}

// Sources flattens either variant into normalized sources, dropping entries
// without a title or url.
func (a answer) Sources() []model.Source {
	var raw []candidate
	switch a.Kind {
	case answerSingle:
		raw = []candidate{a.Single}
	case answerList:
		raw = a.List
	}

	sources := make([]model.Source, 0, len(raw))
	for _, c := range raw {
		if s, ok := c.normalize(); ok {
			sources = append(sources, s)
		}
	}
	return sources
}

func (c candidate) normalize() (model.Source, bool) {
	if c.Title == "" || c.URL == "" {
		return model.Source{}, false
	}

	confidence := model.SourceConfidence(c.Confidence)
	if !confidence.Valid() {
		confidence = model.ConfidenceUnverified
	}

	domain := c.Domain
	if domain == "" {
		domain = Domain(c.URL)
	}

	return model.Source{
		Title:      c.Title,
		URL:        c.URL,
		Snippet:    c.Snippet,
		Confidence: confidence,
		Domain:     domain,
	}, true
}

// Domain returns the URL's hostname without a leading "www.", or "" when the
// URL does not parse to an absolute address.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
