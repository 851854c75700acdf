package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/orchestrator"
)

var _ = Describe("Dispatcher", func() {
	var (
		ctx       context.Context
		transport *mockTransport
	)

	BeforeEach(func() {
		ctx = context.Background()
		transport = &mockTransport{}
	})

	It("routes each analyzable intent and skips QUESTION and TOPIC_SHIFT", func() {
		intents := orchestrator.Score([]model.ClassifiedIntent{
			intent(model.IntentDataClaim, "d"),
			intent(model.IntentActionItem, "a"),
			intent(model.IntentDecision, "dec"),
			intent(model.IntentKeyPoint, "k"),
			intent(model.IntentReference, "r"),
			intent(model.IntentQuestion, "q"),
			intent(model.IntentTopicShift, "t"),
		})

		dispatched := orchestrator.NewDispatcher(transport, 4).Dispatch(ctx, intents, "S1", "raw", "")

		Expect(dispatched).To(Equal([]string{
			"/agents/chart", "/agents/summary", "/agents/summary", "/agents/reference", "/agents/summary",
		}))
		Expect(transport.requests()).To(HaveLen(5))
	})

	It("collapses the three summary types into one distinct route", func() {
		intents := []model.ClassifiedIntent{
			intent(model.IntentDataClaim, "d"),
			intent(model.IntentActionItem, "a"),
			intent(model.IntentDecision, "dec"),
			intent(model.IntentKeyPoint, "k"),
			intent(model.IntentQuestion, "q"),
			intent(model.IntentTopicShift, "t"),
			intent(model.IntentEmailMention, "e"),
		}

		dispatched := orchestrator.NewDispatcher(transport, 0).Dispatch(ctx, intents, "S1", "raw", "")

		distinct := map[string]bool{}
		for _, r := range dispatched {
			distinct[r] = true
		}
		Expect(distinct).To(HaveLen(3))
		Expect(distinct).To(HaveKey("/agents/chart"))
		Expect(distinct).To(HaveKey("/agents/summary"))
		Expect(distinct).To(HaveKey("/agents/context"))
	})

	It("carries the intent, session and explicit context", func() {
		in := intent(model.IntentReference, "According to McKinsey")
		orchestrator.NewDispatcher(transport, 1).Dispatch(ctx, []model.ClassifiedIntent{in}, "S9", "raw text", "earlier context")

		sent := transport.requests()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].route).To(Equal(model.RouteReference))
		Expect(sent[0].req).To(Equal(model.AgentRequest{Intent: in, Context: "earlier context", SessionID: "S9"}))
	})

	It("falls back to the raw text when no context is given", func() {
		orchestrator.NewDispatcher(transport, 1).Dispatch(ctx, []model.ClassifiedIntent{intent(model.IntentDocMention, "deck")}, "S1", "see the deck", "")
		Expect(transport.requests()[0].req.Context).To(Equal("see the deck"))
	})

	It("reports every route as attempted when some analyzers fail", func() {
		transport.sendFn = func(_ context.Context, route model.Route, _ model.AgentRequest) error {
			if route == model.RouteChart {
				return errors.New("chart agent exploded")
			}
			return nil
		}
		intents := []model.ClassifiedIntent{
			intent(model.IntentDataClaim, "d"),
			intent(model.IntentReference, "r"),
			intent(model.IntentKeyPoint, "k"),
		}

		dispatched := orchestrator.NewDispatcher(transport, 2).Dispatch(ctx, intents, "S1", "raw", "")

		Expect(dispatched).To(HaveLen(3))
		Expect(transport.requests()).To(HaveLen(3))
	})

	It("issues dispatches concurrently and waits for all of them", func() {
		var inFlight, peak atomic.Int32
		transport.sendFn = func(_ context.Context, _ model.Route, _ model.AgentRequest) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		}
		intents := []model.ClassifiedIntent{
			intent(model.IntentDataClaim, "1"),
			intent(model.IntentReference, "2"),
			intent(model.IntentDocMention, "3"),
			intent(model.IntentKeyPoint, "4"),
		}

		orchestrator.NewDispatcher(transport, 4).Dispatch(ctx, intents, "S1", "raw", "")

		Expect(inFlight.Load()).To(Equal(int32(0)))
		Expect(peak.Load()).To(BeNumerically(">", 1))
	})

	It("returns an empty list when nothing is routable", func() {
		dispatched := orchestrator.NewDispatcher(transport, 1).Dispatch(ctx, []model.ClassifiedIntent{intent(model.IntentQuestion, "q")}, "S1", "raw", "")
		Expect(dispatched).To(BeEmpty())
		Expect(dispatched).NotTo(BeNil())
		Expect(transport.requests()).To(BeEmpty())
	})
})

var _ = Describe("HTTPTransport", func() {
	It("posts the agent request as JSON to base URL plus route", func() {
		var gotPath, gotType string
		var gotBody model.AgentRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotBody)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		req := model.AgentRequest{Intent: intent(model.IntentDataClaim, "40%"), Context: "ctx", SessionID: "S1"}
		err := orchestrator.NewHTTPTransport(server.URL+"/", time.Second).Send(context.Background(), model.RouteChart, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(gotPath).To(Equal("/agents/chart"))
		Expect(gotType).To(Equal("application/json"))
		Expect(gotBody).To(Equal(req))
	})

	It("treats error statuses as failures", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := orchestrator.NewHTTPTransport(server.URL, time.Second).Send(context.Background(), model.RouteSummary, model.AgentRequest{})
		Expect(err).To(MatchError(ContainSubstring("unexpected status 500")))
	})
})
