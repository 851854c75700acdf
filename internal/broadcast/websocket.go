package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/validation"
)

const invalidMessage = "invalid_message"

type wsConn struct {
	ws *websocket.Conn
}

func (w *wsConn) Send(ctx context.Context, data []byte) error {
	return w.ws.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close() error {
	return w.ws.Close(websocket.StatusGoingAway, "server shutting down")
}

// Accept upgrades the request and serves the connection until it closes.
func (r *Registry) Accept(w http.ResponseWriter, req *http.Request) {
	ws, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns:     r.cfg.OriginPatterns,
		InsecureSkipVerify: r.cfg.SkipOriginCheck,
	})
	if err != nil {
		slog.WarnContext(req.Context(), "websocket upgrade failed", "error", err)
		return
	}
	r.Serve(req.Context(), ws)
}

// Serve registers the connection unbound and runs its read loop. Control
// messages bind and unbind it; anything malformed is answered with an error
// event on this connection only.
func (r *Registry) Serve(ctx context.Context, ws *websocket.Conn) {
	if r.cfg.ReadLimit > 0 {
		ws.SetReadLimit(r.cfg.ReadLimit)
	}

	client := r.Register(&wsConn{ws: ws})
	defer r.Unregister(client)

	ctx = logger.WithLogFields(ctx, logger.LogFields{ConnectionID: &client.ID, Component: "broadcast"})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slog.InfoContext(ctx, "viewer connected", "connections", r.Count())

	if r.cfg.PingInterval > 0 {
		go r.keepAlive(ctx, ws)
	}

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.InfoContext(ctx, "viewer disconnected")
			} else if !errors.Is(err, context.Canceled) {
				slog.DebugContext(ctx, "viewer read failed", "error", err)
			}
			_ = ws.CloseNow()
			return
		}
		r.HandleMessage(ctx, client, data)
	}
}

// HandleMessage applies one viewer control message.
func (r *Registry) HandleMessage(ctx context.Context, c *Client, data []byte) {
	if details := validation.Validate(validation.ClientMessage, data); details != nil {
		r.reject(ctx, c, details[0])
		return
	}

	var msg model.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		r.reject(ctx, c, err.Error())
		return
	}

	switch model.EventName(msg.Event) {
	case model.EventSessionStart:
		if msg.SessionID == "" {
			r.reject(ctx, c, "session:start requires a sessionId")
			return
		}
		r.Bind(c, msg.SessionID)
		slog.InfoContext(ctx, "viewer bound to session", "session_id", msg.SessionID)
	case model.EventSessionEnd:
		r.Unbind(c)
		slog.InfoContext(ctx, "viewer unbound", "session_id", msg.SessionID)
	default:
		slog.DebugContext(ctx, "ignoring viewer message", "event", msg.Event)
	}
}

func (r *Registry) reject(ctx context.Context, c *Client, message string) {
	err := r.SendTo(ctx, c, model.EventError, model.ErrorPayload{Code: invalidMessage, Message: message})
	if err != nil {
		slog.DebugContext(ctx, "failed to send error to viewer", "error", err)
	}
}

func (r *Registry) keepAlive(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(r.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, r.cfg.PingInterval)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					slog.InfoContext(ctx, "viewer missed pong, closing", "error", err)
				}
				_ = ws.CloseNow()
				return
			}
		}
	}
}
