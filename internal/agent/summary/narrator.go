package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
)

// NarrationWindow is how much of the transcript tail the narrator reads.
const NarrationWindow = 800

const defaultDemoSummary = "The speaker is discussing key business metrics and performance trends."

var demoSummaries = []struct {
	words   []string
	summary string
}{
	{[]string{"revenue", "sales"}, "Revenue and sales performance metrics are being analyzed."},
	{[]string{"growth", "increase"}, "Growth trends and improvement strategies are under discussion."},
	{[]string{"market", "customer"}, "Market dynamics and customer insights are being explored."},
	{[]string{"team", "project"}, "Team progress and project milestones are being reviewed."},
}

type Narration struct {
	Summary string `json:"summary"`
	Demo    bool   `json:"demo,omitempty"`
}

// Narrator produces a one-sentence description of what is being said now.
type Narrator struct {
	client gateway.Client
}

func NewNarrator(client gateway.Client) *Narrator {
	return &Narrator{client: client}
}

// Narrate summarizes the transcript tail. Without a backend credential it
// answers from a keyword table and marks the result as demo; any other
// backend failure is returned.
func (n *Narrator) Narrate(ctx context.Context, transcript string) (Narration, error) {
	if !gateway.Configured(n.client) {
		return DemoNarration(transcript), nil
	}

	raw, err := n.client.Generate(ctx, gateway.Request{
		SystemPrompt: narrationPrompt,
		UserPrompt:   narrationUserPrompt(tail(transcript, NarrationWindow)),
		SchemaName:   llm.StageLiveSummary,
		MaxTokens:    50,
		Temperature:  gateway.Temp(0.3),
	})
	if errors.Is(err, gateway.ErrNoCredential) {
		return DemoNarration(transcript), nil
	}
	if err != nil {
		slog.WarnContext(ctx, "live summary failed", "error", err)
		return Narration{}, fmt.Errorf("narrate: %w", err)
	}

	return Narration{Summary: strings.TrimSpace(raw)}, nil
}

// DemoNarration picks a canned sentence from the first matching keyword group.
func DemoNarration(transcript string) Narration {
	lower := strings.ToLower(transcript)
	for _, d := range demoSummaries {
		for _, w := range d.words {
			if strings.Contains(lower, w) {
				return Narration{Summary: d.summary, Demo: true}
			}
		}
	}
	return Narration{Summary: defaultDemoSummary, Demo: true}
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
