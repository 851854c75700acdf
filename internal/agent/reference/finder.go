package reference

import (
	"context"
	"log/slog"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

// Finder looks up supporting sources for a spoken reference.
type Finder struct {
	client gateway.Client
}

func NewFinder(client gateway.Client) *Finder {
	return &Finder{client: client}
}

// Find never fails. Backend and decoding errors produce an empty source list
// that still carries the query.
func (f *Finder) Find(ctx context.Context, req model.AgentRequest) model.Result[model.ReferenceResponse] {
	sc := logger.StartSpan(ctx, "agent.reference.find")
	defer sc.End()
	ctx = sc.Context()

	query := req.Intent.Excerpt
	empty := model.ReferenceResponse{Sources: []model.Source{}, Query: query}

	raw, err := f.client.Generate(ctx, gateway.Request{
		SystemPrompt: searchPrompt,
		UserPrompt:   searchUserPrompt(query, req.Context),
		JSONMode:     true,
		SchemaName:   llm.StageReference,
	})
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "reference search failed", "error", err, "query", logger.Truncate(query, 100))
		return model.Degrade(empty, err)
	}

	a, err := decodeAnswer(gateway.ExtractJSON(raw))
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "reference response unusable",
			"error", err,
			"response", logger.Truncate(raw, 200))
		return model.Degrade(empty, err)
	}

	sources := a.Sources()
	sc.SetAttributes(attribute.Int("reference.sources", len(sources)))
	slog.DebugContext(ctx, "reference search complete", "sources", len(sources))

	return model.Ok(model.ReferenceResponse{Sources: sources, Query: query})
}
