package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/validation"
)

type Orchestrator interface {
	Process(ctx context.Context, req model.OrchestratorRequest) (model.OrchestratorResponse, error)
}

type OrchestratorHandler struct {
	orchestrator Orchestrator
	status       Broadcaster
}

func NewOrchestratorHandler(orchestrator Orchestrator, status Broadcaster) *OrchestratorHandler {
	return &OrchestratorHandler{orchestrator: orchestrator, status: status}
}

func (h *OrchestratorHandler) Process(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.OrchestratorRequest
	if !bindValidated(c, validation.Orchestrator, &req) {
		return
	}

	defer recoverAgent(ctx, c, h.status, req.SessionID, model.AgentOrchestrator)

	resp, err := h.orchestrator.Process(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "orchestration failed", "error", err, "session_id", req.SessionID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
