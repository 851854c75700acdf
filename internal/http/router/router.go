package router

import (
	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Agents       *handler.AgentHandler
	Orchestrator *handler.OrchestratorHandler
	Sessions     *handler.SessionHandler
	Events       *handler.EventsHandler
	Summarize    *handler.SummarizeHandler
	Health       *handler.HealthHandler
	Websocket    *handler.WebsocketHandler
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	HealthRouter(router.Group("/health"), h.Health)

	router.POST("/orchestrator", h.Orchestrator.Process)
	router.POST("/summarize", h.Summarize.Summarize)
	router.GET("/ws", h.Websocket.Connect)

	AgentRouter(router.Group("/agents"), h.Agents)
	SessionRouter(router.Group("/sessions/:session_id"), h.Sessions, h.Events)
}
