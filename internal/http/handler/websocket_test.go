package handler_test

import (
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
)

var _ = Describe("WebsocketHandler", func() {
	It("hands the request to the acceptor", func() {
		acceptor := &mockAcceptor{}
		router := gin.New()
		router.GET("/ws", handler.NewWebsocketHandler(acceptor).Connect)

		w := get(router, "/ws")

		Expect(acceptor.accepted).To(Equal(1))
		Expect(w.Code).To(Equal(http.StatusSwitchingProtocols))
	})
})
