package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config holds LLM client configuration.
type Config struct {
	Provider    string   // "openai" or "anthropic"
	APIKey      string   // Missing key yields a client that fails every call with ErrNoCredential
	BaseURL     string   // Optional: custom API endpoint
	Model       string   // Model name (e.g., "gpt-4o-mini", "claude-sonnet-4-5")
	MaxTokens   int      // Default completion budget when a request sets none
	Temperature *float64 // Default temperature when a request sets none
}

// Client is the model gateway: a system instruction and a user prompt in, raw text out.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	JSONMode     bool   // Ask the backend for a JSON object
	SchemaName   string // Names the call for logs, traces and the call log
	Schema       any    // Optional JSON schema; implies JSONMode on backends that support it
	MaxTokens    int
	Temperature  *float64 // nil = config default, explicit 0 = deterministic
}

// New builds a gateway client for cfg.Provider. A missing API key is not an
// error here: the returned client reports ErrNoCredential on every call so
// callers degrade the same way they do for any other backend failure.
func New(cfg Config) (Client, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	if cfg.APIKey == "" {
		return &unconfigured{provider: provider, model: cfg.Model}, nil
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

type unconfigured struct {
	provider string
	model    string
}

func (u *unconfigured) Generate(_ context.Context, req Request) (string, error) {
	return "", &BackendError{Provider: u.provider, Op: req.SchemaName, Err: ErrNoCredential}
}

func (u *unconfigured) Model() string {
	return u.model
}

// Configured reports whether c can reach a backend at all.
func Configured(c Client) bool {
	_, missing := Unwrap(c).(*unconfigured)
	return !missing
}

func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

// ExtractJSON strips markdown code fences and any prose around the outermost
// JSON value. Models asked for JSON still wrap it in ```json fences often enough
// that every decoder goes through this first.
func ExtractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}
