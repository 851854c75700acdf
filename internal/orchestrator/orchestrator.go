package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// StatusReporter publishes agent:status events for a session.
type StatusReporter interface {
	ReportStatus(ctx context.Context, sessionID string, agent model.AgentName, status model.AgentStatus, message string)
}

// Service runs one transcript chunk through classify, score and dispatch.
type Service struct {
	classifier IntentClassifier
	dispatcher AgentDispatcher
	status     StatusReporter
}

func NewService(classifier IntentClassifier, dispatcher AgentDispatcher, status StatusReporter) *Service {
	return &Service{
		classifier: classifier,
		dispatcher: dispatcher,
		status:     status,
	}
}

// Process classifies req.Text, scores the intents and dispatches them. The
// only error is a context that ended before dispatch could start.
func (s *Service) Process(ctx context.Context, req model.OrchestratorRequest) (model.OrchestratorResponse, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(req.SessionID),
		Agent:     logger.Ptr(string(model.AgentOrchestrator)),
		Component: "echolens.orchestrator",
	})

	s.report(ctx, req.SessionID, model.StatusProcessing, "")

	classification := s.classifier.Classify(ctx, req.Text)
	scored := Score(classification.Value.Intents)

	if err := ctx.Err(); err != nil {
		s.report(ctx, req.SessionID, model.StatusError, "orchestration cancelled")
		return model.OrchestratorResponse{}, fmt.Errorf("orchestrate chunk: %w", err)
	}

	dispatched := s.dispatcher.Dispatch(ctx, scored, req.SessionID, req.Text, req.Context)

	slog.InfoContext(ctx, "transcript chunk orchestrated",
		"intents", len(scored),
		"dispatched", len(dispatched),
		"degraded", classification.Degraded,
		"classify_ms", classification.Value.ProcessingTimeMs)

	s.report(ctx, req.SessionID, model.StatusComplete, "")

	return model.OrchestratorResponse{Intents: scored, Dispatched: dispatched}, nil
}

func (s *Service) report(ctx context.Context, sessionID string, status model.AgentStatus, message string) {
	if s.status == nil {
		return
	}
	s.status.ReportStatus(ctx, sessionID, model.AgentOrchestrator, status, message)
}
