package contextmatch

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MinScore   = 0.3
	MaxMatches = 3

	keywordHit = 2
	textHit    = 1
)

// Matcher ranks corpus entries against an excerpt by keyword overlap.
type Matcher struct {
	entries []entry
}

func NewMatcher(corpus *Corpus) *Matcher {
	return &Matcher{entries: corpus.entries()}
}

// Match returns at most MaxMatches entries scoring at least MinScore, best
// first. It has no failure mode; the result is never degraded.
func (m *Matcher) Match(ctx context.Context, req model.AgentRequest) model.Result[model.ContextResponse] {
	sc := logger.StartSpan(ctx, "agent.context.match")
	defer sc.End()
	ctx = sc.Context()

	words := searchWords(req.Intent.Excerpt)

	matches := []model.ContextMatch{}
	for _, e := range m.entries {
		score := e.score(words)
		if score < MinScore {
			continue
		}
		match := e.match
		match.RelevanceScore = score
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}

	sc.SetAttributes(attribute.Int("context.matches", len(matches)))
	slog.DebugContext(ctx, "context match complete",
		"words", len(words),
		"matches", len(matches))

	return model.Ok(model.ContextResponse{Matches: matches})
}

func searchWords(excerpt string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(excerpt)) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// score is the share of the best possible score: every word could hit a
// keyword for two points.
func (e entry) score(words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	total := 0
	for _, w := range words {
		switch {
		case e.keywordMatch(w):
			total += keywordHit
		case strings.Contains(e.text, w):
			total += textHit
		}
	}
	return float64(total) / float64(len(words)*keywordHit)
}

func (e entry) keywordMatch(word string) bool {
	for _, k := range e.keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if strings.Contains(k, word) || strings.Contains(word, k) {
			return true
		}
	}
	return false
}
