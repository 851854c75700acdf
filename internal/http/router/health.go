package router

import (
	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
)

func HealthRouter(rg *gin.RouterGroup, h *handler.HealthHandler) {
	rg.GET("", h.Health)
	rg.GET("/llm", h.LLM)
}
