package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const jsonInstruction = "Respond with a single JSON object and nothing else. Do not wrap it in markdown fences."

type anthropicClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature *float64
}

func newAnthropicClient(cfg Config) *anthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}

	return &anthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (c *anthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: c.systemPrompt(req)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = c.temperature
	}
	if temperature != nil {
		params.Temperature = anthropic.Float(*temperature)
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", &BackendError{Provider: ProviderAnthropic, Op: req.SchemaName, Err: err}
	}

	slog.DebugContext(ctx, "llm generate completed",
		"model", c.model,
		"schema", req.SchemaName,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason)

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", &BackendError{Provider: ProviderAnthropic, Op: req.SchemaName, Err: ErrEmptyResponse}
	}

	return out.String(), nil
}

func (c *anthropicClient) Model() string {
	return c.model
}

// systemPrompt folds the JSON contract into the system text; the Messages API
// has no response_format switch.
func (c *anthropicClient) systemPrompt(req Request) string {
	if !req.JSONMode && req.Schema == nil {
		return req.SystemPrompt
	}

	var b strings.Builder
	b.WriteString(req.SystemPrompt)
	b.WriteString("\n\n")
	b.WriteString(jsonInstruction)
	if req.Schema != nil {
		if raw, err := json.Marshal(req.Schema); err == nil {
			b.WriteString("\nThe object must validate against this JSON schema:\n")
			b.Write(raw)
		}
	}
	return b.String()
}
