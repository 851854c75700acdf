package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/agent/chart"
	"github.com/avishaychauhan/EchoLabs/internal/agent/contextmatch"
	"github.com/avishaychauhan/EchoLabs/internal/agent/reference"
	"github.com/avishaychauhan/EchoLabs/internal/agent/summary"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/orchestrator"
)

type analyzerOutput struct {
	Route    model.Route            `json:"route"`
	Intent   model.ClassifiedIntent `json:"intent"`
	Result   any                    `json:"result"`
	Degraded bool                   `json:"degraded,omitempty"`
}

// localTransport satisfies orchestrator.Transport by calling the analyzers in
// process instead of posting to the server.
type localTransport struct {
	charts     *chart.Generator
	references *reference.Finder
	matcher    *contextmatch.Matcher
	extractor  *summary.Extractor

	mu      sync.Mutex
	outputs []analyzerOutput
}

func newLocalTransport(client gateway.Client) (*localTransport, error) {
	corpus, err := contextmatch.DefaultCorpus()
	if err != nil {
		return nil, err
	}
	return &localTransport{
		charts:     chart.NewGenerator(client),
		references: reference.NewFinder(client),
		matcher:    contextmatch.NewMatcher(corpus),
		extractor:  summary.NewExtractor(client, summary.NewStore()),
	}, nil
}

func (t *localTransport) Send(ctx context.Context, route model.Route, req model.AgentRequest) error {
	out := analyzerOutput{Route: route, Intent: req.Intent}

	switch route {
	case model.RouteChart:
		res := t.charts.Generate(ctx, req)
		out.Result, out.Degraded = res.Value, res.Degraded
	case model.RouteReference:
		res := t.references.Find(ctx, req)
		out.Result, out.Degraded = res.Value, res.Degraded
	case model.RouteContext:
		res := t.matcher.Match(ctx, req)
		out.Result, out.Degraded = res.Value, res.Degraded
	case model.RouteSummary:
		res := t.extractor.FromIntent(ctx, req)
		out.Result, out.Degraded = res.Value, res.Degraded
	default:
		return fmt.Errorf("no analyzer for route %s", route)
	}

	t.mu.Lock()
	t.outputs = append(t.outputs, out)
	t.mu.Unlock()
	return nil
}

// results orders outputs by descending intent priority, then route, since
// dispatch completes in any order.
func (t *localTransport) results() []analyzerOutput {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := append([]analyzerOutput(nil), t.outputs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Intent.Priority != out[j].Intent.Priority {
			return out[i].Intent.Priority > out[j].Intent.Priority
		}
		return out[i].Route < out[j].Route
	})
	return out
}

func newRunCommand(p *probe) *cobra.Command {
	var (
		file        string
		contextText string
	)

	cmd := &cobra.Command{
		Use:   "run [text...]",
		Short: "Classify text and run every dispatched analyzer in process",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args, file)
			if err != nil {
				return err
			}

			transport, err := newLocalTransport(p.client)
			if err != nil {
				return err
			}
			service := orchestrator.NewService(
				orchestrator.NewClassifier(p.client),
				orchestrator.NewDispatcher(transport, 0),
				nil,
			)

			resp, err := service.Process(cmd.Context(), model.OrchestratorRequest{
				Text:      text,
				SessionID: "probe",
				Context:   contextText,
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd, struct {
				model.OrchestratorResponse
				Results []analyzerOutput `json:"results"`
			}{OrchestratorResponse: resp, Results: transport.results()})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the text from a file (- for stdin)")
	cmd.Flags().StringVar(&contextText, "context", "", "Surrounding transcript passed to the analyzers")

	return cmd
}
