package handler_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avishaychauhan/EchoLabs/internal/agent/summary"
	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
)

var _ = Describe("SummarizeHandler", func() {
	var (
		router   *gin.Engine
		narrator *mockNarrator
	)

	BeforeEach(func() {
		router = gin.New()
		narrator = &mockNarrator{}
		router.POST("/summarize", handler.NewSummarizeHandler(narrator).Summarize)
	})

	It("returns the narrated sentence", func() {
		narrator.narrateFn = func(_ context.Context, transcript string) (summary.Narration, error) {
			Expect(transcript).To(Equal("Revenue grew 40% last quarter."))
			return summary.Narration{Summary: "The speaker reports strong revenue growth."}, nil
		}

		w := postJSON(router, "/summarize", map[string]any{"transcript": "Revenue grew 40% last quarter."})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"summary":"The speaker reports strong revenue growth."}`))
	})

	It("marks demo narrations", func() {
		narrator.narrateFn = func(_ context.Context, transcript string) (summary.Narration, error) {
			return summary.DemoNarration(transcript), nil
		}

		w := postJSON(router, "/summarize", map[string]any{"transcript": "our sales pipeline"})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"demo":true`))
	})

	DescribeTable("rejects a missing transcript",
		func(body any) {
			w := postJSON(router, "/summarize", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Transcript is required"}`))
		},
		Entry("empty object", map[string]any{}),
		Entry("empty string", map[string]any{"transcript": ""}),
		Entry("wrong type", map[string]any{"transcript": 42}),
	)

	It("returns 500 when the backend fails", func() {
		narrator.narrateFn = func(_ context.Context, _ string) (summary.Narration, error) {
			return summary.Narration{}, errors.New("narrate: backend 500")
		}

		w := postJSON(router, "/summarize", map[string]any{"transcript": "hello"})

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"Failed to generate summary"}`))
	})
})
