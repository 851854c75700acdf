package broadcast_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/coder/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/internal/broadcast"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

var _ = Describe("Websocket transport", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		registry *broadcast.Registry
		server   *httptest.Server
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		registry = broadcast.NewRegistry(config.BroadcastConfig{
			WriteTimeout: time.Second,
			PingInterval: time.Minute,
			ReadLimit:    1 << 16,
		}, nil)
		server = httptest.NewServer(http.HandlerFunc(registry.Accept))
	})

	AfterEach(func() {
		registry.Close()
		server.Close()
		cancel()
	})

	dial := func() *websocket.Conn {
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := websocket.Dial(ctx, url, nil)
		Expect(err).NotTo(HaveOccurred())
		return conn
	}

	read := func(conn *websocket.Conn) rawEnvelope {
		_, data, err := conn.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		var env rawEnvelope
		Expect(json.Unmarshal(data, &env)).To(Succeed())
		return env
	}

	It("binds a viewer and delivers only its session's events", func() {
		conn := dial()
		defer conn.CloseNow()
		Eventually(registry.Count).Should(Equal(1))

		Expect(conn.Write(ctx, websocket.MessageText, []byte(`{"event":"session:start","sessionId":"S1","timestamp":1,"payload":{}}`))).To(Succeed())
		// Messages are handled in order, so the error reply proves the bind landed.
		Expect(conn.Write(ctx, websocket.MessageText, []byte(`{}`))).To(Succeed())
		Expect(read(conn).Event).To(Equal(model.EventError))

		registry.Broadcast(ctx, model.EventChartRender, "S2", nil)
		registry.Broadcast(ctx, model.EventReferenceFound, "S1", model.ReferenceResponse{Query: "q"})

		env := read(conn)
		Expect(env.Event).To(Equal(model.EventReferenceFound))
		Expect(env.SessionID).To(Equal("S1"))
	})

	Describe("origin checks", func() {
		dialFrom := func(server *httptest.Server, origin string) (*http.Response, error) {
			url := "ws" + strings.TrimPrefix(server.URL, "http")
			conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
				HTTPHeader: http.Header{"Origin": []string{origin}},
			})
			if err == nil {
				conn.CloseNow()
			}
			return resp, err
		}

		It("rejects pages from unlisted origins", func() {
			resp, err := dialFrom(server, "https://elsewhere.example")
			Expect(err).To(HaveOccurred())
			Expect(resp).NotTo(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(registry.Count()).To(Equal(0))
		})

		It("accepts configured origin patterns", func() {
			allowed := broadcast.NewRegistry(config.BroadcastConfig{
				WriteTimeout:   time.Second,
				OriginPatterns: []string{"*.echolens.dev"},
			}, nil)
			defer allowed.Close()
			allowedServer := httptest.NewServer(http.HandlerFunc(allowed.Accept))
			defer allowedServer.Close()

			_, err := dialFrom(allowedServer, "https://app.echolens.dev")
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts any origin when the check is skipped", func() {
			open := broadcast.NewRegistry(config.BroadcastConfig{
				WriteTimeout:    time.Second,
				SkipOriginCheck: true,
			}, nil)
			defer open.Close()
			openServer := httptest.NewServer(http.HandlerFunc(open.Accept))
			defer openServer.Close()

			_, err := dialFrom(openServer, "https://elsewhere.example")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("removes the viewer when it disconnects", func() {
		conn := dial()
		Eventually(registry.Count).Should(Equal(1))

		Expect(conn.Close(websocket.StatusNormalClosure, "bye")).To(Succeed())

		Eventually(registry.Count).Should(BeZero())
	})
})
