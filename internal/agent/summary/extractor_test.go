package summary_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/agent/summary"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

type mockGateway struct {
	calls    []gateway.Request
	response string
	err      error
}

func (m *mockGateway) Generate(_ context.Context, req gateway.Request) (string, error) {
	m.calls = append(m.calls, req)
	return m.response, m.err
}

func (m *mockGateway) Model() string { return "mock" }

func summaryIntent(t model.IntentType, excerpt string) model.AgentRequest {
	return model.AgentRequest{
		Intent:    model.ClassifiedIntent{Type: t, Confidence: 0.8, Excerpt: excerpt},
		SessionID: "S1",
	}
}

var _ = Describe("Extractor", func() {
	var (
		ctx       context.Context
		backend   *mockGateway
		store     *summary.Store
		extractor *summary.Extractor
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = &mockGateway{}
		store = summary.NewStore()
		extractor = summary.NewExtractor(backend, store)
	})

	Describe("FromIntent", func() {
		DescribeTable("maps the intent type to a category",
			func(t model.IntentType, category model.BulletCategory) {
				res := extractor.FromIntent(ctx, summaryIntent(t, "Ship the beta on Friday"))

				Expect(res.Degraded).To(BeFalse())
				Expect(res.Value.Bullets).To(HaveLen(1))
				b := res.Value.Bullets[0]
				Expect(b.Category).To(Equal(category))
				Expect(b.Text).To(Equal("Ship the beta on Friday"))
				Expect(b.ID).NotTo(BeEmpty())
				Expect(b.Timestamp).To(BeNumerically(">", 0))
			},
			Entry("key point", model.IntentKeyPoint, model.CategoryKeyPoint),
			Entry("decision", model.IntentDecision, model.CategoryDecision),
			Entry("action item", model.IntentActionItem, model.CategoryActionItem),
			Entry("question", model.IntentQuestion, model.CategoryQuestion),
		)

		It("drops a repeat of an existing bullet", func() {
			extractor.FromIntent(ctx, summaryIntent(model.IntentDecision, "We will ship the beta on Friday"))
			res := extractor.FromIntent(ctx, summaryIntent(model.IntentKeyPoint, "ship the beta Friday"))

			Expect(res.Value.Bullets).To(BeEmpty())
			Expect(res.Value.Bullets).NotTo(BeNil())
			Expect(store.Count("S1")).To(Equal(1))
		})

		It("never calls the backend", func() {
			extractor.FromIntent(ctx, summaryIntent(model.IntentKeyPoint, "anything worth noting"))
			Expect(backend.calls).To(BeEmpty())
		})
	})

	Describe("Sweep", func() {
		It("keeps well-formed bullets with known categories", func() {
			backend.response = `{"bullets":[
				{"category":"action_item","text":"Sarah sends the deck","owner":"Sarah"},
				{"category":"decision","text":"Usage pricing approved","owner":null},
				{"category":"opinion","text":"Nice weather"},
				{"category":"key_point","text":42},
				{"category":"question","text":"   "},
				{"text":"no category"}
			]}`

			res := extractor.Sweep(ctx, "S1", "long transcript")

			Expect(res.Degraded).To(BeFalse())
			Expect(res.Value.Bullets).To(HaveLen(2))
			Expect(res.Value.Bullets[0].Owner).To(Equal("Sarah"))
			Expect(res.Value.Bullets[0].Category).To(Equal(model.CategoryActionItem))
			Expect(res.Value.Bullets[1].Owner).To(BeEmpty())
			Expect(backend.calls[0].SchemaName).To(Equal(llm.StageSummarySweep))
			Expect(backend.calls[0].UserPrompt).To(Equal("Extract key points from this meeting transcript:\n\n\"long transcript\""))
		})

		It("dedups the batch against what the session already has", func() {
			extractor.FromIntent(ctx, summaryIntent(model.IntentKeyPoint, "Revenue grew 40% last quarter driven by enterprise"))
			backend.response = `{"bullets":[
				{"category":"key_point","text":"Revenue grew 40% last quarter enterprise segment"},
				{"category":"question","text":"When does the pricing committee meet?"}
			]}`

			res := extractor.Sweep(ctx, "S1", "transcript")

			Expect(res.Value.Bullets).To(HaveLen(1))
			Expect(res.Value.Bullets[0].Category).To(Equal(model.CategoryQuestion))
			Expect(store.Count("S1")).To(Equal(2))
		})

		DescribeTable("degrades to no bullets",
			func(response string, err error) {
				backend.response = response
				backend.err = err

				res := extractor.Sweep(ctx, "S1", "transcript")

				Expect(res.Degraded).To(BeTrue())
				Expect(res.Value.Bullets).NotTo(BeNil())
				Expect(res.Value.Bullets).To(BeEmpty())
				Expect(store.Count("S1")).To(BeZero())
			},
			Entry("backend error", "", errors.New("boom")),
			Entry("not json", "here are your bullets", nil),
			Entry("no bullets key", `{"items":[]}`, nil),
			Entry("bullets not an array", `{"bullets":"none"}`, nil),
		)

		It("works end to end with the keyword gateway", func() {
			extractor = summary.NewExtractor(llm.NewKeywordClient(), store)

			res := extractor.Sweep(ctx, "S1", "Sarah will send the deck by Friday. We decided to go with usage pricing.")

			Expect(res.Degraded).To(BeFalse())
			Expect(res.Value.Bullets).NotTo(BeEmpty())
		})
	})
})

var _ = Describe("Narrator", func() {
	It("answers from keywords when no backend is configured", func() {
		client, err := gateway.New(gateway.Config{Provider: gateway.ProviderOpenAI})
		Expect(err).NotTo(HaveOccurred())

		n, err := summary.NewNarrator(client).Narrate(context.Background(), "Our Revenue is up")

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(summary.Narration{Summary: "Revenue and sales performance metrics are being analyzed.", Demo: true}))
	})

	DescribeTable("demo keyword groups",
		func(transcript, expected string) {
			Expect(summary.DemoNarration(transcript).Summary).To(Equal(expected))
		},
		Entry("growth", "strong increase this year", "Growth trends and improvement strategies are under discussion."),
		Entry("market", "our customer base", "Market dynamics and customer insights are being explored."),
		Entry("team", "the project is on track", "Team progress and project milestones are being reviewed."),
		Entry("default", "hello everyone", "The speaker is discussing key business metrics and performance trends."),
	)

	It("sends only the transcript tail and trims the answer", func() {
		backend := &mockGateway{response: "  The speaker is reviewing pricing.\n"}
		transcript := strings.Repeat("a", 100) + strings.Repeat("b", summary.NarrationWindow)

		n, err := summary.NewNarrator(backend).Narrate(context.Background(), transcript)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(summary.Narration{Summary: "The speaker is reviewing pricing."}))
		Expect(backend.calls[0].UserPrompt).To(ContainSubstring(strings.Repeat("b", summary.NarrationWindow)))
		Expect(backend.calls[0].UserPrompt).NotTo(ContainSubstring("ab"))
		Expect(backend.calls[0].SchemaName).To(Equal(llm.StageLiveSummary))
	})

	It("falls back to the demo sentence on a missing credential", func() {
		backend := &mockGateway{err: &gateway.BackendError{Provider: "anthropic", Op: "live_summary", Err: gateway.ErrNoCredential}}

		n, err := summary.NewNarrator(backend).Narrate(context.Background(), "team update")

		Expect(err).NotTo(HaveOccurred())
		Expect(n.Demo).To(BeTrue())
	})

	It("returns other backend failures", func() {
		backend := &mockGateway{err: errors.New("upstream 500")}

		_, err := summary.NewNarrator(backend).Narrate(context.Background(), "team update")

		Expect(err).To(MatchError(ContainSubstring("upstream 500")))
	})
})
