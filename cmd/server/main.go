package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/avishaychauhan/EchoLabs/common/id"
	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/common/otel"
	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/core/db"
	"github.com/avishaychauhan/EchoLabs/internal/agent/chart"
	"github.com/avishaychauhan/EchoLabs/internal/agent/contextmatch"
	"github.com/avishaychauhan/EchoLabs/internal/agent/reference"
	"github.com/avishaychauhan/EchoLabs/internal/agent/summary"
	"github.com/avishaychauhan/EchoLabs/internal/broadcast"
	"github.com/avishaychauhan/EchoLabs/internal/eventlog"
	"github.com/avishaychauhan/EchoLabs/internal/http/handler"
	"github.com/avishaychauhan/EchoLabs/internal/http/middleware"
	httprouter "github.com/avishaychauhan/EchoLabs/internal/http/router"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/orchestrator"
	"github.com/avishaychauhan/EchoLabs/internal/store"
	"github.com/avishaychauhan/EchoLabs/internal/transcript"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "echolens starting",
		"env", cfg.Env,
		"service", cfg.OTel.ServiceName,
		"llm_provider", cfg.LLM.Provider,
		"llm_enabled", cfg.LLM.Enabled())

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	var callLog *store.CallLog
	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		callLog = store.NewCallLog(database, store.DefaultCallLogConfig())
		if err := callLog.Migrate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to migrate call log", "error", err)
			os.Exit(1)
		}
		callLog.Start(bgCtx)
		slog.InfoContext(ctx, "database connected, gateway call log enabled")
	} else {
		slog.InfoContext(ctx, "gateway call log disabled (no DATABASE_URL)")
	}

	var (
		journal broadcast.Journal
		reader  handler.EventReader
	)
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		eventJournal := eventlog.New(redisClient, cfg.Redis.StreamPrefix, cfg.Redis.MaxLen)
		journal, reader = eventJournal, eventJournal
		slog.InfoContext(ctx, "redis connected, event journal enabled", "prefix", cfg.Redis.StreamPrefix)
	} else {
		slog.InfoContext(ctx, "event journal disabled (no REDIS_URL)")
	}

	client, err := newGateway(cfg.LLM, callLog)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	registry := broadcast.NewRegistry(cfg.Broadcast, journal)
	bullets := summary.NewStore()
	extractor := summary.NewExtractor(client, bullets)

	orchestration := orchestrator.NewService(
		orchestrator.NewClassifier(client),
		orchestrator.NewDispatcher(
			orchestrator.NewHTTPTransport(cfg.Dispatch.BaseURL, cfg.Dispatch.Timeout),
			cfg.Dispatch.MaxParallel,
		),
		registry,
	)
	corpus, err := contextmatch.DefaultCorpus()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load context corpus", "error", err)
		os.Exit(1)
	}

	ingestor := transcript.NewIngestor(transcript.NewAccumulator(), orchestration, extractor, bullets, registry, cfg.Transcript)

	handlers := httprouter.Handlers{
		Agents: handler.NewAgentHandler(handler.Analyzers{
			Charts:     chart.NewGenerator(client),
			References: reference.NewFinder(client),
			Context:    contextmatch.NewMatcher(corpus),
			Summary:    extractor,
			Bullets:    bullets,
		}, registry),
		Orchestrator: handler.NewOrchestratorHandler(orchestration, registry),
		Sessions:     handler.NewSessionHandler(ingestor, bullets, registry),
		Events:       handler.NewEventsHandler(reader),
		Summarize:    handler.NewSummarizeHandler(summary.NewNarrator(client)),
		Health:       handler.NewHealthHandler(client, registry),
		Websocket:    handler.NewWebsocketHandler(registry),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, handlers)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Websocket and SSE connections outlive any fixed write deadline.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	registry.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	ingestor.Wait()
	stopBackground()
	if callLog != nil {
		callLog.Wait()
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// newGateway builds the model client every stage shares. The mock provider
// answers from keyword rules and needs no credential.
func newGateway(cfg config.LLMConfig, callLog *store.CallLog) (gateway.Client, error) {
	var client gateway.Client
	if cfg.Provider == gateway.ProviderMock {
		client = llm.NewKeywordClient()
	} else {
		c, err := gateway.New(gateway.Config{
			Provider:    cfg.Provider,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: gateway.Temp(cfg.Temperature),
		})
		if err != nil {
			return nil, err
		}
		client = c
	}

	client = gateway.WithTimeout(client, cfg.Timeout)
	if callLog != nil {
		client = gateway.WithRecorder(client, callLog)
	}
	return gateway.WithTracing(client), nil
}

func setupRouter(cfg config.Config, handlers httprouter.Handlers) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, handlers)

	return router
}

const banner = `
███████╗  ██████╗ ██╗  ██╗  ██████╗  ██╗      ███████╗ ███╗   ██╗ ███████╗
██╔════╝ ██╔════╝ ██║  ██║ ██╔═══██╗ ██║      ██╔════╝ ████╗  ██║ ██╔════╝
█████╗   ██║      ███████║ ██║   ██║ ██║      █████╗   ██╔██╗ ██║ ███████╗
██╔══╝   ██║      ██╔══██║ ██║   ██║ ██║      ██╔══╝   ██║╚██╗██║ ╚════██║
███████╗ ╚██████╗ ██║  ██║ ╚██████╔╝ ███████╗ ███████╗ ██║ ╚████║ ███████║
╚══════╝  ╚═════╝ ╚═╝  ╚═╝  ╚═════╝  ╚══════╝ ╚══════╝ ╚═╝  ╚═══╝ ╚══════╝
`
