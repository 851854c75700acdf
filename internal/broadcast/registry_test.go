package broadcast_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/internal/broadcast"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

var _ = Describe("Registry", func() {
	var (
		ctx      context.Context
		journal  *fakeJournal
		registry *broadcast.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		journal = &fakeJournal{}
		registry = broadcast.NewRegistry(config.BroadcastConfig{WriteTimeout: time.Second}, journal)
	})

	Describe("Broadcast", func() {
		It("targets the bound session and every unbound connection", func() {
			s1, s2, unbound := &fakeConn{}, &fakeConn{}, &fakeConn{}
			registry.Bind(registry.Register(s1), "S1")
			registry.Bind(registry.Register(s2), "S2")
			registry.Register(unbound)

			registry.Broadcast(ctx, model.EventChartRender, "S1", model.ChartPayload{Title: "Revenue"})

			Expect(s1.events()).To(Equal([]model.EventName{model.EventChartRender}))
			Expect(s2.events()).To(BeEmpty())
			Expect(unbound.events()).To(Equal([]model.EventName{model.EventChartRender}))

			env := s1.envelopes()[0]
			Expect(env.SessionID).To(Equal("S1"))
			Expect(env.Timestamp).To(BeNumerically(">", 0))
			Expect(string(env.Payload)).To(ContainSubstring(`"title":"Revenue"`))
		})

		It("keeps delivering when one connection fails", func() {
			broken := &fakeConn{err: errors.New("broken pipe")}
			healthy := &fakeConn{}
			registry.Bind(registry.Register(broken), "S1")
			registry.Bind(registry.Register(healthy), "S1")

			registry.Broadcast(ctx, model.EventReferenceFound, "S1", model.ReferenceResponse{Query: "q"})

			Expect(healthy.events()).To(HaveLen(1))
			Expect(registry.Count()).To(Equal(2))
		})

		It("journals session-targeted envelopes only", func() {
			registry.Broadcast(ctx, model.EventSummaryUpdate, "S1", model.SummaryPayload{})
			registry.BroadcastAll(ctx, model.EventSessionEnd, struct{}{})
			registry.Broadcast(ctx, model.EventAgentStatus, "", nil)

			Expect(journal.count()).To(Equal(1))
			Expect(journal.entries[0].Event).To(Equal(model.EventSummaryUpdate))
		})

		It("ignores journal failures", func() {
			conn := &fakeConn{}
			registry.Register(conn)
			journal.err = errors.New("redis down")

			registry.Broadcast(ctx, model.EventSummaryUpdate, "S1", model.SummaryPayload{})

			Expect(conn.events()).To(HaveLen(1))
		})
	})

	It("BroadcastAll ignores session binding", func() {
		a, b := &fakeConn{}, &fakeConn{}
		registry.Bind(registry.Register(a), "S1")
		registry.Bind(registry.Register(b), "S2")

		registry.BroadcastAll(ctx, model.EventSessionEnd, struct{}{})

		Expect(a.events()).To(HaveLen(1))
		Expect(b.events()).To(HaveLen(1))
		Expect(a.envelopes()[0].SessionID).To(BeEmpty())
	})

	It("reports agent status as an agent:status event", func() {
		conn := &fakeConn{}
		registry.Bind(registry.Register(conn), "S1")

		registry.ReportStatus(ctx, "S1", model.AgentChart, model.StatusError, "backend down")

		env := conn.envelopes()[0]
		Expect(env.Event).To(Equal(model.EventAgentStatus))
		var payload model.AgentStatusPayload
		Expect(json.Unmarshal(env.Payload, &payload)).To(Succeed())
		Expect(payload).To(Equal(model.AgentStatusPayload{Agent: model.AgentChart, Status: model.StatusError, Message: "backend down"}))
	})

	It("stops delivering after unregister and closes everything on Close", func() {
		gone, stays := &fakeConn{}, &fakeConn{}
		registry.Unregister(registry.Register(gone))
		registry.Register(stays)

		registry.Broadcast(ctx, model.EventChartRender, "S1", nil)
		registry.Close()

		Expect(gone.events()).To(BeEmpty())
		Expect(stays.closed).To(BeTrue())
		Expect(registry.Count()).To(BeZero())
	})

	Describe("HandleMessage", func() {
		var (
			conn   *fakeConn
			client *broadcast.Client
		)

		BeforeEach(func() {
			conn = &fakeConn{}
			client = registry.Register(conn)
		})

		It("binds on session:start and unbinds on session:end", func() {
			registry.HandleMessage(ctx, client, []byte(`{"event":"session:start","sessionId":"S1","timestamp":1,"payload":{}}`))
			Expect(registry.SessionOf(client)).To(Equal("S1"))

			registry.HandleMessage(ctx, client, []byte(`{"event":"session:start","sessionId":"S2","timestamp":2}`))
			Expect(registry.SessionOf(client)).To(Equal("S2"))

			registry.HandleMessage(ctx, client, []byte(`{"event":"session:end","sessionId":"S2","timestamp":3}`))
			Expect(registry.SessionOf(client)).To(BeEmpty())
			Expect(conn.events()).To(BeEmpty())
		})

		DescribeTable("answers malformed messages with an error event",
			func(msg string) {
				registry.HandleMessage(ctx, client, []byte(msg))

				envs := conn.envelopes()
				Expect(envs).To(HaveLen(1))
				Expect(envs[0].Event).To(Equal(model.EventError))
				var payload model.ErrorPayload
				Expect(json.Unmarshal(envs[0].Payload, &payload)).To(Succeed())
				Expect(payload.Code).To(Equal("invalid_message"))
				Expect(payload.Message).NotTo(BeEmpty())
				Expect(registry.SessionOf(client)).To(BeEmpty())
			},
			Entry("not json", `hello`),
			Entry("no timestamp", `{"event":"session:start","sessionId":"S1"}`),
			Entry("numeric event", `{"event":5,"timestamp":1}`),
			Entry("start without session", `{"event":"session:start","timestamp":1}`),
		)

		It("ignores unknown events", func() {
			registry.HandleMessage(ctx, client, []byte(`{"event":"cursor:move","timestamp":1}`))
			Expect(conn.events()).To(BeEmpty())
		})
	})

	It("is safe under concurrent register, bind and broadcast", func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				c := registry.Register(&fakeConn{})
				registry.Bind(c, "S1")
				registry.Unregister(c)
			}()
			go func() {
				defer wg.Done()
				registry.Broadcast(ctx, model.EventAgentStatus, "S1", nil)
			}()
		}
		wg.Wait()

		Expect(registry.Count()).To(BeZero())
	})
})
