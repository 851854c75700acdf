package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/eventlog"
	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
)

const (
	replayBlock = 25 * time.Second
	replayCount = 100

	// MaxReadFailures consecutive journal errors end the stream; the viewer
	// reconnects with its last id.
	MaxReadFailures  = 5
	readRetryBackoff = 50 * time.Millisecond
	maxRetryBackoff  = 2 * time.Second
)

type EventReader interface {
	Read(ctx context.Context, sessionID, lastID string, block time.Duration, count int64) ([]eventlog.Entry, error)
}

// EventsHandler replays a session's journaled envelopes over server-sent events.
type EventsHandler struct {
	reader EventReader
}

// NewEventsHandler accepts a nil reader when the journal is disabled.
func NewEventsHandler(reader EventReader) *EventsHandler {
	return &EventsHandler{reader: reader}
}

func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	if h.reader == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "event journal disabled"})
		return
	}

	sessionID := c.Param("session_id")
	lastID := c.Query("last_id")
	if lastID == "" {
		lastID = "0"
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "streaming not supported"})
		return
	}

	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)
	sseWrite(c.Writer, "", "ping", "ready")
	flusher.Flush()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entries, err := h.reader.Read(ctx, sessionID, lastID, replayBlock, replayCount)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			slog.WarnContext(ctx, "event journal read failed",
				"error", err,
				"session_id", sessionID,
				"failures", failures)
			sseWrite(c.Writer, "", "error", map[string]string{"error": err.Error()})
			flusher.Flush()
			if failures >= MaxReadFailures {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(retryBackoff(failures)):
			}
			continue
		}
		failures = 0

		if len(entries) == 0 {
			sseWrite(c.Writer, "", "ping", time.Now().UTC().Format(time.RFC3339Nano))
			flusher.Flush()
			continue
		}

		for _, e := range entries {
			lastID = e.ID
			sseWrite(c.Writer, e.ID, e.Event, []byte(e.Envelope))
		}
		flusher.Flush()
	}
}

func retryBackoff(failures int) time.Duration {
	d := readRetryBackoff << (failures - 1)
	if d <= 0 || d > maxRetryBackoff {
		return maxRetryBackoff
	}
	return d
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

func sseWrite(w http.ResponseWriter, id, event string, data any) {
	payload := marshalPayload(data)
	if id != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", id)
	}
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

func marshalPayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		bytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(bytes)
	}
}
