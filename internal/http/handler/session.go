package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/transcript"
	"github.com/avishaychauhan/EchoLabs/internal/validation"
)

type ChunkIngestor interface {
	Ingest(ctx context.Context, sessionID string, chunk model.TranscriptChunk) (transcript.Result, error)
	Reset(sessionID string)
}

type BulletStore interface {
	Bullets(sessionID string) []model.SummaryBullet
	ResetSession(sessionID string)
}

// SessionHandler owns the per-session routes: chunk ingestion, the bullet
// list and session teardown.
type SessionHandler struct {
	ingestor    ChunkIngestor
	bullets     BulletStore
	broadcaster Broadcaster
}

func NewSessionHandler(ingestor ChunkIngestor, bullets BulletStore, broadcaster Broadcaster) *SessionHandler {
	return &SessionHandler{ingestor: ingestor, bullets: bullets, broadcaster: broadcaster}
}

func (h *SessionHandler) IngestChunk(c *gin.Context) {
	sessionID := c.Param("session_id")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{SessionID: logger.Ptr(sessionID)})

	var chunk model.TranscriptChunk
	if !bindValidated(c, validation.TranscriptChunk, &chunk) {
		return
	}

	res, err := h.ingestor.Ingest(ctx, sessionID, chunk)
	if err != nil {
		slog.ErrorContext(ctx, "chunk ingestion failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.ChunkResponse{
		Appended:    res.Appended,
		FinalChunks: res.FinalChunks,
		Intents:     res.Intents,
		Dispatched:  res.Dispatched,
	})
}

func (h *SessionHandler) Bullets(c *gin.Context) {
	c.JSON(http.StatusOK, dto.BulletsResponse{Bullets: h.bullets.Bullets(c.Param("session_id"))})
}

func (h *SessionHandler) End(c *gin.Context) {
	sessionID := c.Param("session_id")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{SessionID: logger.Ptr(sessionID)})

	h.bullets.ResetSession(sessionID)
	h.ingestor.Reset(sessionID)
	h.broadcaster.Broadcast(ctx, model.EventSessionEnd, sessionID, gin.H{})

	slog.InfoContext(ctx, "session reset")
	c.Status(http.StatusNoContent)
}
