package broadcast_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
	closed bool
}

func (f *fakeConn) Send(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// envelopes decodes every frame received so far, keeping payloads raw.
func (f *fakeConn) envelopes() []rawEnvelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]rawEnvelope, 0, len(f.frames))
	for _, fr := range f.frames {
		var env rawEnvelope
		if err := json.Unmarshal(fr, &env); err != nil {
			panic(err)
		}
		out = append(out, env)
	}
	return out
}

func (f *fakeConn) events() []model.EventName {
	var names []model.EventName
	for _, e := range f.envelopes() {
		names = append(names, e.Event)
	}
	return names
}

type rawEnvelope struct {
	Event     model.EventName `json:"event"`
	SessionID string          `json:"sessionId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []model.Envelope
	err     error
}

func (j *fakeJournal) Append(_ context.Context, env model.Envelope) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, env)
	return j.err
}

func (j *fakeJournal) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
