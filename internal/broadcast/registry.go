// Package broadcast is the session-keyed registry of live viewer connections.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// Conn is the write side of one viewer connection.
type Conn interface {
	Send(ctx context.Context, data []byte) error
	Close() error
}

// Journal receives a copy of every session-targeted envelope.
type Journal interface {
	Append(ctx context.Context, env model.Envelope) error
}

// Client is one registered connection. SessionID is empty while unbound.
type Client struct {
	ID        string
	conn      Conn
	sessionID string
}

// Registry delivers envelopes to connections bound to a session and to every
// unbound connection. One Registry is shared by all handlers in the process.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client

	cfg     config.BroadcastConfig
	journal Journal
	now     func() time.Time
}

func NewRegistry(cfg config.BroadcastConfig, journal Journal) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		cfg:     cfg,
		journal: journal,
		now:     time.Now,
	}
}

// Register adds an unbound connection.
func (r *Registry) Register(conn Conn) *Client {
	c := &Client{ID: uuid.NewString(), conn: conn}

	r.mu.Lock()
	r.clients[c.ID] = c
	r.mu.Unlock()

	return c
}

// Unregister removes the connection. Calling it twice is harmless.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	delete(r.clients, c.ID)
	r.mu.Unlock()
}

// Bind moves the connection to a session. Rebinding replaces the session.
func (r *Registry) Bind(c *Client, sessionID string) {
	r.mu.Lock()
	c.sessionID = sessionID
	r.mu.Unlock()
}

// Unbind returns the connection to the unbound state.
func (r *Registry) Unbind(c *Client) {
	r.Bind(c, "")
}

// SessionOf reports the session the connection is bound to.
func (r *Registry) SessionOf(c *Client) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return c.sessionID
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast sends the event to connections bound to sessionID and to all
// unbound connections. A failed send is logged and does not stop delivery to
// the others.
func (r *Registry) Broadcast(ctx context.Context, event model.EventName, sessionID string, payload any) {
	env := r.envelope(event, sessionID, payload)
	targets := r.targets(func(c *Client) bool {
		return c.sessionID == "" || c.sessionID == sessionID
	})
	r.deliver(ctx, env, targets)

	if r.journal != nil && sessionID != "" {
		if err := r.journal.Append(ctx, env); err != nil {
			slog.WarnContext(ctx, "failed to journal broadcast",
				"error", err,
				"event", event,
				"session_id", sessionID)
		}
	}
}

// BroadcastAll sends the event to every connection regardless of session.
func (r *Registry) BroadcastAll(ctx context.Context, event model.EventName, payload any) {
	env := r.envelope(event, "", payload)
	r.deliver(ctx, env, r.targets(func(*Client) bool { return true }))
}

// SendTo delivers an event to a single connection.
func (r *Registry) SendTo(ctx context.Context, c *Client, event model.EventName, payload any) error {
	env := r.envelope(event, r.SessionOf(c), payload)
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event, err)
	}
	return r.send(ctx, c, data)
}

// ReportStatus broadcasts an agent:status event.
func (r *Registry) ReportStatus(ctx context.Context, sessionID string, agent model.AgentName, status model.AgentStatus, message string) {
	r.Broadcast(ctx, model.EventAgentStatus, sessionID, model.AgentStatusPayload{
		Agent:   agent,
		Status:  status,
		Message: message,
	})
}

// Close closes every connection and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (r *Registry) envelope(event model.EventName, sessionID string, payload any) model.Envelope {
	return model.Envelope{
		Event:     event,
		SessionID: sessionID,
		Timestamp: r.now().UnixMilli(),
		Payload:   payload,
	}
}

func (r *Registry) targets(match func(*Client) bool) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) deliver(ctx context.Context, env model.Envelope, targets []*Client) {
	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal envelope", "error", err, "event", env.Event)
		return
	}

	for _, c := range targets {
		if err := r.send(ctx, c, data); err != nil {
			slog.DebugContext(logger.WithLogFields(ctx, logger.LogFields{ConnectionID: &c.ID}),
				"broadcast send failed", "error", err, "event", env.Event)
		}
	}
}

// send detaches from the caller's cancellation so an aborted request does not
// cut off viewers mid-burst; the write timeout still bounds it.
func (r *Registry) send(ctx context.Context, c *Client, data []byte) error {
	ctx = context.WithoutCancel(ctx)
	if r.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.WriteTimeout)
		defer cancel()
	}
	return c.conn.Send(ctx, data)
}
