package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/avishaychauhan/EchoLabs/core/db"
)

type Config struct {
	OTel       OTelConfig
	LLM        LLMConfig
	Dispatch   DispatchConfig
	Redis      RedisConfig
	Broadcast  BroadcastConfig
	Transcript TranscriptConfig
	Env        string
	Port       string
	LogLevel   string
	NodeID     int64
	DB         db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string // deployment.environment resource attribute
	SampleRatio    float64
}

type LLMConfig struct {
	Provider    string // "openai", "anthropic" or "mock"
	APIKey      string
	BaseURL     string // Optional: for OpenAI-compatible endpoints
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type DispatchConfig struct {
	BaseURL     string // Agent routes are resolved against this, e.g. http://localhost:8080
	Timeout     time.Duration
	MaxParallel int
}

type RedisConfig struct {
	URL          string
	StreamPrefix string
	MaxLen       int64
}

type BroadcastConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadLimit    int64
	// Host patterns allowed to open a websocket in addition to same-host pages.
	OriginPatterns []string
	// Accept any origin. Only ever set in development.
	SkipOriginCheck bool
}

type TranscriptConfig struct {
	SweepEvery   int // Final chunks between summary sweeps; 0 disables
	ContextChars int // Tail of the running transcript passed as orchestration context
}

// Load loads configuration from environment variables.
// In development a .env file is read first when present.
func Load() (Config, error) {
	if getEnv("ECHOLENS_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	port := getEnv("PORT", "8080")

	cfg := Config{
		Env:      getEnv("ECHOLENS_ENV", "development"),
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", ""),
		NodeID:   int64(getEnvInt("NODE_ID", 1)),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "echolens"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("ECHOLENS_ENV", "development"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Dispatch: DispatchConfig{
			BaseURL:     getEnv("DISPATCH_BASE_URL", "http://localhost:"+port),
			Timeout:     getEnvDuration("DISPATCH_TIMEOUT", 45*time.Second),
			MaxParallel: getEnvInt("DISPATCH_MAX_PARALLEL", 8),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			StreamPrefix: getEnv("EVENT_STREAM_PREFIX", "echolens:events"),
			MaxLen:       int64(getEnvInt("EVENT_STREAM_MAXLEN", 5000)),
		},
		Broadcast: BroadcastConfig{
			WriteTimeout:   getEnvDuration("WS_WRITE_TIMEOUT", 5*time.Second),
			PingInterval:   getEnvDuration("WS_PING_INTERVAL", 30*time.Second),
			ReadLimit:      int64(getEnvInt("WS_READ_LIMIT", 64*1024)),
			OriginPatterns: getEnvList("WS_ALLOWED_ORIGINS"),
		},
		Transcript: TranscriptConfig{
			SweepEvery:   getEnvInt("SWEEP_EVERY_FINAL_CHUNKS", 10),
			ContextChars: getEnvInt("ORCHESTRATE_CONTEXT_CHARS", 1200),
		},
	}

	if cfg.Env != "development" && cfg.Env != "production" {
		return Config{}, fmt.Errorf("ECHOLENS_ENV must be development or production, got %q", cfg.Env)
	}

	cfg.Broadcast.SkipOriginCheck = cfg.IsDevelopment()

	switch cfg.LLM.Provider {
	case "openai", "anthropic", "mock":
	default:
		return Config{}, fmt.Errorf("LLM_PROVIDER must be openai, anthropic or mock, got %q", cfg.LLM.Provider)
	}

	if cfg.Dispatch.MaxParallel < 1 {
		return Config{}, fmt.Errorf("DISPATCH_MAX_PARALLEL must be at least 1")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Enabled reports whether a real model backend is configured. The mock
// provider never needs a key.
func (c LLMConfig) Enabled() bool {
	if c.Provider == "mock" {
		return true
	}
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
