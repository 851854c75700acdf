package main

import (
	"github.com/spf13/cobra"

	"github.com/avishaychauhan/EchoLabs/internal/agent/chart"
	"github.com/avishaychauhan/EchoLabs/internal/agent/contextmatch"
	"github.com/avishaychauhan/EchoLabs/internal/agent/reference"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// analysis is what the single-analyzer commands print.
type analysis[T any] struct {
	Result   T      `json:"result"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func newAnalysis[T any](res model.Result[T]) analysis[T] {
	out := analysis[T]{Result: res.Value, Degraded: res.Degraded}
	if res.Reason != nil {
		out.Reason = res.Reason.Error()
	}
	return out
}

func agentRequest(intentType model.IntentType, excerpt, contextText string) model.AgentRequest {
	if contextText == "" {
		contextText = excerpt
	}
	return model.AgentRequest{
		Intent: model.ClassifiedIntent{
			Type:       intentType,
			Confidence: 1,
			Excerpt:    excerpt,
			Priority:   intentType.Priority(),
		},
		Context:   contextText,
		SessionID: "probe",
	}
}

func newChartCommand(p *probe) *cobra.Command {
	var contextText string

	cmd := &cobra.Command{
		Use:   "chart <excerpt...>",
		Short: "Generate a Mermaid chart for a data claim",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			excerpt, err := inputText(cmd, args, "")
			if err != nil {
				return err
			}
			res := chart.NewGenerator(p.client).Generate(cmd.Context(), agentRequest(model.IntentDataClaim, excerpt, contextText))
			return writeJSON(cmd, newAnalysis(res))
		},
	}

	cmd.Flags().StringVar(&contextText, "context", "", "Surrounding transcript (defaults to the excerpt)")

	return cmd
}

func newReferenceCommand(p *probe) *cobra.Command {
	var contextText string

	cmd := &cobra.Command{
		Use:   "reference <excerpt...>",
		Short: "Look up sources for a spoken reference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			excerpt, err := inputText(cmd, args, "")
			if err != nil {
				return err
			}
			res := reference.NewFinder(p.client).Find(cmd.Context(), agentRequest(model.IntentReference, excerpt, contextText))
			return writeJSON(cmd, newAnalysis(res))
		},
	}

	cmd.Flags().StringVar(&contextText, "context", "", "Surrounding transcript (defaults to the excerpt)")

	return cmd
}

func newContextCommand() *cobra.Command {
	var corpusFile string

	cmd := &cobra.Command{
		Use:   "context <excerpt...>",
		Short: "Match an excerpt against the email, document, calendar and slack corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			excerpt, err := inputText(cmd, args, "")
			if err != nil {
				return err
			}

			corpus, err := contextmatch.DefaultCorpus()
			if corpusFile != "" {
				var data []byte
				if data, err = readFile(corpusFile); err != nil {
					return err
				}
				corpus, err = contextmatch.ParseCorpus(data)
			}
			if err != nil {
				return err
			}

			res := contextmatch.NewMatcher(corpus).Match(cmd.Context(), agentRequest(model.IntentEmailMention, excerpt, ""))
			return writeJSON(cmd, newAnalysis(res))
		},
	}

	cmd.Flags().StringVar(&corpusFile, "corpus", "", "YAML corpus to match against instead of the built-in one")

	return cmd
}
