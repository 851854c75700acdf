package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

const defaultMaxParallel = 8

// AgentDispatcher fans classified intents out to their analyzers.
type AgentDispatcher interface {
	Dispatch(ctx context.Context, intents []model.ClassifiedIntent, sessionID, rawText, contextText string) []string
}

type Dispatcher struct {
	transport   Transport
	maxParallel int
}

func NewDispatcher(transport Transport, maxParallel int) *Dispatcher {
	if maxParallel < 1 {
		maxParallel = defaultMaxParallel
	}
	return &Dispatcher{transport: transport, maxParallel: maxParallel}
}

type agentCall struct {
	route  model.Route
	intent model.ClassifiedIntent
}

// Dispatch sends every routable intent to its analyzer concurrently and waits
// for all of them. Individual failures are logged and otherwise ignored; the
// returned list holds one route per attempted intent, in input order.
// An empty context falls back to rawText.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []model.ClassifiedIntent, sessionID, rawText, contextText string) []string {
	calls := make([]agentCall, 0, len(intents))
	for _, in := range intents {
		if route, ok := in.Type.Route(); ok {
			calls = append(calls, agentCall{route: route, intent: in})
		}
	}

	dispatched := make([]string, len(calls))
	if len(calls) == 0 {
		return dispatched
	}

	if contextText == "" {
		contextText = rawText
	}

	sc := logger.StartSpan(ctx, "orchestrator.dispatch")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(attribute.Int("orchestrator.dispatches", len(calls)))

	var g errgroup.Group
	g.SetLimit(d.maxParallel)

	for i, call := range calls {
		dispatched[i] = string(call.route)

		g.Go(func() error {
			callCtx := logger.WithLogFields(ctx, logger.LogFields{
				Route:      logger.Ptr(string(call.route)),
				IntentType: logger.Ptr(string(call.intent.Type)),
			})
			start := time.Now()

			err := d.transport.Send(callCtx, call.route, model.AgentRequest{
				Intent:    call.intent,
				Context:   contextText,
				SessionID: sessionID,
			})
			if err != nil {
				slog.WarnContext(callCtx, "agent dispatch failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return nil
			}

			slog.DebugContext(callCtx, "agent dispatch completed",
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		})
	}

	_ = g.Wait()
	return dispatched
}
