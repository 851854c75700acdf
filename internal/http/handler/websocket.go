package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Acceptor interface {
	Accept(w http.ResponseWriter, req *http.Request)
}

type WebsocketHandler struct {
	acceptor Acceptor
}

func NewWebsocketHandler(acceptor Acceptor) *WebsocketHandler {
	return &WebsocketHandler{acceptor: acceptor}
}

// Connect hands the request to the registry, which owns the connection until
// the peer goes away.
func (h *WebsocketHandler) Connect(c *gin.Context) {
	h.acceptor.Accept(c.Writer, c.Request)
}
