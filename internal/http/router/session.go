package router

import (
	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, sessions *handler.SessionHandler, events *handler.EventsHandler) {
	rg.POST("/chunks", sessions.IngestChunk)
	rg.GET("/bullets", sessions.Bullets)
	rg.DELETE("", sessions.End)
	rg.GET("/events/stream", events.Stream)
}
