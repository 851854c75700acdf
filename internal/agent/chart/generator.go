package chart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultTitle     = "Chart"
	fallbackTitle    = "Data Point"
	fallbackExcerpt  = 50
	fallbackTemplate = "mindmap\n  root((Data Point))\n    "
)

var (
	errNoDiagram     = errors.New("response has no mermaid field")
	errRepairInvalid = errors.New("repaired diagram still invalid")
)

type generation struct {
	Mermaid     string `json:"mermaid"`
	Narration   string `json:"narration"`
	DiagramType string `json:"diagramType"`
	Title       string `json:"title"`
}

type repair struct {
	Mermaid     string `json:"mermaid"`
	Explanation string `json:"explanation"`
}

// Generator turns a data claim into a renderable Mermaid diagram.
type Generator struct {
	client gateway.Client
}

func NewGenerator(client gateway.Client) *Generator {
	return &Generator{client: client}
}

// Generate always returns a diagram in a recognized dialect. A backend answer
// that fails validation gets one repair round-trip; after that, or on any
// backend or decoding failure, a single-node mindmap of the excerpt is returned
// as a degraded result.
func (g *Generator) Generate(ctx context.Context, req model.AgentRequest) model.Result[model.ChartResponse] {
	sc := logger.StartSpan(ctx, "agent.chart.generate")
	defer sc.End()
	ctx = sc.Context()

	excerpt := req.Intent.Excerpt

	raw, err := g.client.Generate(ctx, gateway.Request{
		SystemPrompt: generationPrompt,
		UserPrompt:   generationUserPrompt(excerpt, req.Context),
		JSONMode:     true,
		SchemaName:   llm.StageChart,
		Schema:       gateway.GenerateSchema[generation](),
	})
	if err != nil {
		return g.fallback(ctx, sc, excerpt, err)
	}

	var gen generation
	if err := json.Unmarshal([]byte(gateway.ExtractJSON(raw)), &gen); err != nil {
		return g.fallback(ctx, sc, excerpt, fmt.Errorf("decode chart: %w", err))
	}
	if gen.Mermaid == "" {
		return g.fallback(ctx, sc, excerpt, errNoDiagram)
	}

	code := gen.Mermaid
	if !Valid(code) {
		slog.WarnContext(ctx, "invalid mermaid from backend, attempting repair",
			"mermaid", logger.Truncate(code, 200))
		sc.SetAttributes(attribute.Bool("chart.repaired", true))

		code = g.repair(ctx, code)
		if !Valid(code) {
			return g.fallback(ctx, sc, excerpt, errRepairInvalid)
		}
	}

	chartType, ok := Detect(code)
	if !ok {
		chartType = model.ChartType(gen.DiagramType)
	}
	if chartType == "" {
		chartType = model.ChartGraph
	}

	title := gen.Title
	if title == "" {
		title = defaultTitle
	}

	sc.SetAttributes(attribute.String("chart.type", string(chartType)))
	return model.Ok(model.ChartResponse{
		MermaidCode: code,
		ChartType:   chartType,
		Title:       title,
		Narration:   gen.Narration,
	})
}

// repair asks the backend to fix syntax only. Any failure returns the input
// unchanged so the caller's validation decides what happens next.
func (g *Generator) repair(ctx context.Context, code string) string {
	raw, err := g.client.Generate(ctx, gateway.Request{
		SystemPrompt: repairPrompt,
		UserPrompt:   repairUserPrompt(code),
		JSONMode:     true,
		SchemaName:   llm.StageChartRepair,
		Schema:       gateway.GenerateSchema[repair](),
	})
	if err != nil {
		slog.WarnContext(ctx, "mermaid repair call failed", "error", err)
		return code
	}

	var fixed repair
	if err := json.Unmarshal([]byte(gateway.ExtractJSON(raw)), &fixed); err != nil || fixed.Mermaid == "" {
		slog.WarnContext(ctx, "mermaid repair response unusable", "response", logger.Truncate(raw, 200))
		return code
	}

	slog.DebugContext(ctx, "mermaid repaired", "explanation", fixed.Explanation)
	return fixed.Mermaid
}

func (g *Generator) fallback(ctx context.Context, sc *logger.SpanContext, excerpt string, reason error) model.Result[model.ChartResponse] {
	sc.Degrade(reason)
	slog.WarnContext(ctx, "chart generation fell back to mindmap", "error", reason)
	return model.Degrade(Fallback(excerpt), reason)
}

// Fallback is the minimal diagram used when generation fails.
func Fallback(excerpt string) model.ChartResponse {
	return model.ChartResponse{
		MermaidCode: fallbackTemplate + truncateRunes(excerpt, fallbackExcerpt),
		ChartType:   model.ChartMindmap,
		Title:       fallbackTitle,
		Narration:   excerpt,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
