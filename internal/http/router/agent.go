package router

import (
	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
)

// AgentRouter mounts the analyzer routes under /agents. The paths must match
// the model.Route values the dispatcher posts to.
func AgentRouter(rg *gin.RouterGroup, h *handler.AgentHandler) {
	rg.POST("/chart", h.Chart)
	rg.POST("/reference", h.Reference)
	rg.POST("/context", h.Context)
	rg.POST("/summary", h.Summary)
}
