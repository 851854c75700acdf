package orchestrator_test

import (
	"context"
	"sync"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

type mockGateway struct {
	generateFn func(ctx context.Context, req gateway.Request) (string, error)
}

func (m *mockGateway) Generate(ctx context.Context, req gateway.Request) (string, error) {
	return m.generateFn(ctx, req)
}

func (m *mockGateway) Model() string { return "mock" }

type sentRequest struct {
	route model.Route
	req   model.AgentRequest
}

type mockTransport struct {
	mu     sync.Mutex
	sent   []sentRequest
	sendFn func(ctx context.Context, route model.Route, req model.AgentRequest) error
}

func (m *mockTransport) Send(ctx context.Context, route model.Route, req model.AgentRequest) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentRequest{route: route, req: req})
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(ctx, route, req)
	}
	return nil
}

func (m *mockTransport) requests() []sentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentRequest(nil), m.sent...)
}

type statusEvent struct {
	sessionID string
	agent     model.AgentName
	status    model.AgentStatus
}

type mockStatus struct {
	mu     sync.Mutex
	events []statusEvent
}

func (m *mockStatus) ReportStatus(_ context.Context, sessionID string, agent model.AgentName, status model.AgentStatus, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, statusEvent{sessionID: sessionID, agent: agent, status: status})
}

type mockClassifier struct {
	classifyFn func(ctx context.Context, text string) model.Result[model.Classification]
}

func (m *mockClassifier) Classify(ctx context.Context, text string) model.Result[model.Classification] {
	return m.classifyFn(ctx, text)
}

func intent(t model.IntentType, excerpt string) model.ClassifiedIntent {
	return model.ClassifiedIntent{Type: t, Confidence: 0.9, Excerpt: excerpt}
}
