package transcript_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/transcript"
)

var _ = Describe("Accumulator", func() {
	It("joins final chunks and returns the tail", func() {
		acc := transcript.NewAccumulator()

		n, tail := acc.Append("S1", " Revenue grew ", 0)
		Expect(n).To(Equal(1))
		Expect(tail).To(Equal("Revenue grew"))

		n, tail = acc.Append("S1", "last quarter.", 8)
		Expect(n).To(Equal(2))
		Expect(tail).To(Equal("quarter."))
		Expect(acc.Full("S1")).To(Equal("Revenue grew last quarter."))
		Expect(acc.Full("S2")).To(BeEmpty())
	})

	It("counts blank final chunks without adding text", func() {
		acc := transcript.NewAccumulator()
		acc.Append("S1", "hello", 0)
		n, _ := acc.Append("S1", "   ", 0)

		Expect(n).To(Equal(2))
		Expect(acc.Full("S1")).To(Equal("hello"))
	})

	It("resets sessions", func() {
		acc := transcript.NewAccumulator()
		acc.Append("S1", "a", 0)
		acc.Append("S2", "b", 0)

		acc.Reset("S1")
		Expect(acc.Full("S1")).To(BeEmpty())
		Expect(acc.Full("S2")).To(Equal("b"))

		acc.ResetAll()
		Expect(acc.Full("S2")).To(BeEmpty())
	})
})

var _ = Describe("Ingestor", func() {
	var (
		ctx          context.Context
		orchestrator *mockOrchestrator
		sweeper      *mockSweeper
		broadcaster  *mockBroadcaster
		ingestor     *transcript.Ingestor
	)

	BeforeEach(func() {
		ctx = context.Background()
		orchestrator = &mockOrchestrator{}
		sweeper = &mockSweeper{}
		broadcaster = &mockBroadcaster{}
		ingestor = transcript.NewIngestor(transcript.NewAccumulator(), orchestrator, sweeper, fixedCounter(7), broadcaster,
			config.TranscriptConfig{SweepEvery: 2, ContextChars: 12})
	})

	It("echoes interim chunks without orchestrating them", func() {
		res, err := ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: "Revenue gr", IsFinal: false, Timestamp: 1})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Appended).To(BeFalse())
		Expect(orchestrator.requests).To(BeEmpty())
		Expect(broadcaster.events()).To(Equal([]model.EventName{model.EventTranscriptUpdate}))
		Expect(broadcaster.last().payload).To(Equal(model.TranscriptPayload{Text: "Revenue gr", Timestamp: 1}))
	})

	It("orchestrates final chunks with the transcript tail as context", func() {
		orchestrator.processFn = func(req model.OrchestratorRequest) (model.OrchestratorResponse, error) {
			return model.OrchestratorResponse{
				Intents:    []model.ClassifiedIntent{{Type: model.IntentDataClaim, Confidence: 0.95, Excerpt: req.Text, Priority: 9}},
				Dispatched: []string{string(model.RouteChart)},
			}, nil
		}

		_, err := ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: "Welcome everyone.", IsFinal: true, Timestamp: 1})
		Expect(err).NotTo(HaveOccurred())
		res, err := ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: "Revenue grew 40%.", IsFinal: true, Timestamp: 2})
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Appended).To(BeTrue())
		Expect(res.FinalChunks).To(Equal(2))
		Expect(res.Dispatched).To(Equal([]string{"/agents/chart"}))
		Expect(orchestrator.requests).To(HaveLen(2))
		last := orchestrator.requests[1]
		Expect(last.Text).To(Equal("Revenue grew 40%."))
		Expect(last.Timestamp).To(Equal(int64(2)))
		Expect(last.Context).To(Equal("ue grew 40%."))
	})

	It("sweeps every configured number of final chunks and broadcasts the delta", func() {
		sweeper.bullets = []model.SummaryBullet{{ID: "1", Text: "Revenue grew", Category: model.CategoryKeyPoint}}

		for i, text := range []string{"one.", "two.", "three.", "four."} {
			_, err := ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: text, IsFinal: true, Timestamp: int64(i)})
			Expect(err).NotTo(HaveOccurred())
		}
		ingestor.Wait()

		Expect(sweeper.calls()).To(ConsistOf("one. two.", "one. two. three. four."))
		Expect(broadcaster.events()).To(ContainElement(model.EventSummaryUpdate))

		var payload model.SummaryPayload
		for _, s := range broadcaster.sent {
			if s.event == model.EventSummaryUpdate {
				payload = s.payload.(model.SummaryPayload)
			}
		}
		Expect(payload.Total).To(Equal(7))
		Expect(payload.Bullets).To(HaveLen(1))
		Expect(payload.Bullets[0].IsNew).To(BeTrue())
	})

	It("does not broadcast an empty sweep", func() {
		res := ingestor.Sweep(ctx, "S1", "nothing to see")

		Expect(res.Value.Bullets).To(BeEmpty())
		Expect(broadcaster.events()).To(BeEmpty())
	})

	It("returns orchestration errors", func() {
		orchestrator.processFn = func(model.OrchestratorRequest) (model.OrchestratorResponse, error) {
			return model.OrchestratorResponse{}, errors.New("context canceled")
		}

		_, err := ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: "hi", IsFinal: true})

		Expect(err).To(MatchError(ContainSubstring("ingest chunk")))
	})

	It("forgets the transcript on reset", func() {
		_, _ = ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: "first", IsFinal: true})
		ingestor.Reset("S1")
		_, _ = ingestor.Ingest(ctx, "S1", model.TranscriptChunk{Text: "second", IsFinal: true})

		Expect(strings.Contains(orchestrator.requests[1].Context, "first")).To(BeFalse())
	})
})
