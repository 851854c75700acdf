package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

const probeTimeout = 10 * time.Second

type ConnectionCounter interface {
	Count() int
}

type HealthHandler struct {
	client      gateway.Client
	connections ConnectionCounter
	now         func() time.Time
}

func NewHealthHandler(client gateway.Client, connections ConnectionCounter) *HealthHandler {
	return &HealthHandler{client: client, connections: connections, now: time.Now}
}

func (h *HealthHandler) Health(c *gin.Context) {
	agents := map[string]bool{
		string(model.AgentOrchestrator): true,
		string(model.AgentChart):        true,
		string(model.AgentReference):    true,
		string(model.AgentContext):      true,
		string(model.AgentSummary):      true,
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:      "ok",
		Timestamp:   h.now().UnixMilli(),
		Agents:      agents,
		Connections: h.connections.Count(),
	})
}

// LLM sends a trivial prompt through the gateway. A rate-limited backend is
// reachable, so it still reports ok.
func (h *HealthHandler) LLM(c *gin.Context) {
	ctx := c.Request.Context()

	if !gateway.Configured(h.client) {
		c.JSON(http.StatusServiceUnavailable, dto.LLMHealthResponse{
			OK:    false,
			Error: "LLM API key not configured",
		})
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := h.client.Generate(probeCtx, gateway.Request{
		SystemPrompt: "You are a health check. Reply with the single word OK.",
		UserPrompt:   "ping",
		SchemaName:   llm.StageHealthCheck,
		MaxTokens:    5,
		Temperature:  gateway.Temp(0),
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.LLMHealthResponse{
			OK:      true,
			Model:   h.client.Model(),
			Message: "LLM backend reachable",
		})
	case gateway.IsRateLimited(err):
		slog.WarnContext(ctx, "llm health probe rate limited", "error", err)
		c.JSON(http.StatusOK, dto.LLMHealthResponse{
			OK:          true,
			Model:       h.client.Model(),
			RateLimited: true,
			Message:     "API key valid but rate limited",
		})
	default:
		slog.ErrorContext(ctx, "llm health probe failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, dto.LLMHealthResponse{
			OK:      false,
			Error:   "LLM backend unreachable",
			Details: err.Error(),
		})
	}
}
