package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/agent/summary"
	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
)

type Narrator interface {
	Narrate(ctx context.Context, transcript string) (summary.Narration, error)
}

type SummarizeHandler struct {
	narrator Narrator
}

func NewSummarizeHandler(narrator Narrator) *SummarizeHandler {
	return &SummarizeHandler{narrator: narrator}
}

func (h *SummarizeHandler) Summarize(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Transcript is required"})
		return
	}

	narration, err := h.narrator.Narrate(ctx, req.Transcript)
	if err != nil {
		slog.ErrorContext(ctx, "live summary failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to generate summary"})
		return
	}

	c.JSON(http.StatusOK, dto.SummarizeResponse{Summary: narration.Summary, Demo: narration.Demo})
}
