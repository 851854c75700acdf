package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/openai/openai-go"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
)

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

var _ = Describe("HealthHandler", func() {
	newRouter := func(client gateway.Client, connections int) *gin.Engine {
		router := gin.New()
		h := handler.NewHealthHandler(client, &mockConnections{count: connections})
		router.GET("/health", h.Health)
		router.GET("/health/llm", h.LLM)
		return router
	}

	It("reports every agent and the connection count", func() {
		w := get(newRouter(&mockGateway{}, 4), "/health")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.HealthResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("ok"))
		Expect(resp.Timestamp).To(BeNumerically(">", 0))
		Expect(resp.Connections).To(Equal(4))
		Expect(resp.Agents).To(HaveLen(5))
		Expect(resp.Agents).To(HaveKeyWithValue("chart", true))
	})

	Describe("LLM", func() {
		It("returns 503 when no key is configured", func() {
			client, err := gateway.New(gateway.Config{Provider: gateway.ProviderOpenAI})
			Expect(err).NotTo(HaveOccurred())

			w := get(newRouter(client, 0), "/health/llm")

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			var resp dto.LLMHealthResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.OK).To(BeFalse())
			Expect(resp.Error).NotTo(BeEmpty())
		})

		It("probes the backend with the health check stage", func() {
			var stage string
			client := &mockGateway{generateFn: func(_ context.Context, req gateway.Request) (string, error) {
				stage = req.SchemaName
				return "OK", nil
			}}

			w := get(newRouter(client, 0), "/health/llm")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(stage).To(Equal(llm.StageHealthCheck))
			Expect(w.Body.String()).To(ContainSubstring(`"ok":true`))
		})

		It("treats a rate limit as reachable", func() {
			rateLimited := &openai.Error{
				StatusCode: http.StatusTooManyRequests,
				Request:    httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil),
				Response:   &http.Response{StatusCode: http.StatusTooManyRequests},
			}
			client := &mockGateway{generateFn: func(_ context.Context, _ gateway.Request) (string, error) {
				return "", &gateway.BackendError{Provider: "openai", Op: llm.StageHealthCheck, Err: rateLimited}
			}}

			w := get(newRouter(client, 0), "/health/llm")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp dto.LLMHealthResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.OK).To(BeTrue())
			Expect(resp.RateLimited).To(BeTrue())
		})

		It("returns 503 with details for other failures", func() {
			client := &mockGateway{generateFn: func(_ context.Context, _ gateway.Request) (string, error) {
				return "", errors.New("dial tcp: connection refused")
			}}

			w := get(newRouter(client, 0), "/health/llm")

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			var resp dto.LLMHealthResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.OK).To(BeFalse())
			Expect(resp.Details).To(ContainSubstring("connection refused"))
		})
	})
})
