package transcript_test

import (
	"context"
	"sync"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

type mockOrchestrator struct {
	mu        sync.Mutex
	requests  []model.OrchestratorRequest
	processFn func(req model.OrchestratorRequest) (model.OrchestratorResponse, error)
}

func (m *mockOrchestrator) Process(_ context.Context, req model.OrchestratorRequest) (model.OrchestratorResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.processFn != nil {
		return m.processFn(req)
	}
	return model.OrchestratorResponse{Intents: []model.ClassifiedIntent{}, Dispatched: []string{}}, nil
}

type mockSweeper struct {
	mu          sync.Mutex
	transcripts []string
	bullets     []model.SummaryBullet
}

func (m *mockSweeper) Sweep(_ context.Context, _ string, transcript string) model.Result[model.SummaryResponse] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts = append(m.transcripts, transcript)
	return model.Ok(model.SummaryResponse{Bullets: m.bullets})
}

func (m *mockSweeper) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.transcripts...)
}

type fixedCounter int

func (c fixedCounter) Count(string) int { return int(c) }

type sent struct {
	event     model.EventName
	sessionID string
	payload   any
}

type mockBroadcaster struct {
	mu   sync.Mutex
	sent []sent
}

func (m *mockBroadcaster) Broadcast(_ context.Context, event model.EventName, sessionID string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{event, sessionID, payload})
}

func (m *mockBroadcaster) events() []model.EventName {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EventName
	for _, s := range m.sent {
		out = append(out, s.event)
	}
	return out
}

func (m *mockBroadcaster) last() sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
