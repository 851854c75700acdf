package orchestrator_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/orchestrator"
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		transport *mockTransport
		status    *mockStatus
	)

	BeforeEach(func() {
		ctx = context.Background()
		transport = &mockTransport{}
		status = &mockStatus{}
	})

	It("dispatches a single data claim to the chart route", func() {
		backend := &mockGateway{generateFn: func(context.Context, gateway.Request) (string, error) {
			return `{"intents":[{"type":"DATA_CLAIM","confidence":0.95,"excerpt":"Revenue grew 40% last quarter"}]}`, nil
		}}
		svc := orchestrator.NewService(
			orchestrator.NewClassifier(backend),
			orchestrator.NewDispatcher(transport, 4),
			status,
		)

		resp, err := svc.Process(ctx, model.OrchestratorRequest{
			Text:      "Revenue grew 40% last quarter",
			Timestamp: 1700000000000,
			SessionID: "S1",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Dispatched).To(Equal([]string{"/agents/chart"}))
		Expect(resp.Intents).To(HaveLen(1))
		Expect(resp.Intents[0].Priority).To(Equal(9))

		sent := transport.requests()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].route).To(Equal(model.RouteChart))
		Expect(sent[0].req.Intent.Type).To(Equal(model.IntentDataClaim))
		Expect(sent[0].req.Intent.Excerpt).To(Equal("Revenue grew 40% last quarter"))
		Expect(sent[0].req.Context).To(Equal("Revenue grew 40% last quarter"))
		Expect(sent[0].req.SessionID).To(Equal("S1"))
	})

	It("brackets the run with orchestrator status events", func() {
		svc := orchestrator.NewService(
			&mockClassifier{classifyFn: func(_ context.Context, text string) model.Result[model.Classification] {
				return model.Ok(model.Classification{RawText: text})
			}},
			orchestrator.NewDispatcher(transport, 1),
			status,
		)

		_, err := svc.Process(ctx, model.OrchestratorRequest{Text: "hello", SessionID: "S1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(status.events).To(Equal([]statusEvent{
			{sessionID: "S1", agent: model.AgentOrchestrator, status: model.StatusProcessing},
			{sessionID: "S1", agent: model.AgentOrchestrator, status: model.StatusComplete},
		}))
	})

	It("still answers when classification degrades", func() {
		svc := orchestrator.NewService(
			&mockClassifier{classifyFn: func(_ context.Context, text string) model.Result[model.Classification] {
				return model.Degrade(model.Classification{Intents: []model.ClassifiedIntent{}, RawText: text}, gateway.ErrNoCredential)
			}},
			orchestrator.NewDispatcher(transport, 1),
			nil,
		)

		resp, err := svc.Process(ctx, model.OrchestratorRequest{Text: "hello", SessionID: "S1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Intents).To(BeEmpty())
		Expect(resp.Dispatched).To(BeEmpty())
	})

	It("reports an error status when the context ends first", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		svc := orchestrator.NewService(
			&mockClassifier{classifyFn: func(_ context.Context, text string) model.Result[model.Classification] {
				return model.Ok(model.Classification{RawText: text})
			}},
			orchestrator.NewDispatcher(transport, 1),
			status,
		)

		_, err := svc.Process(cancelled, model.OrchestratorRequest{Text: "hello", SessionID: "S1"})

		Expect(err).To(MatchError(context.Canceled))
		Expect(status.events[len(status.events)-1].status).To(Equal(model.StatusError))
	})
})
