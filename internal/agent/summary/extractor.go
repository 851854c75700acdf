package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avishaychauhan/EchoLabs/common/id"
	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

var errNoBulletsArray = errors.New("response has no bullets array")

// sweepSchema describes the sweep response for backends that accept a JSON schema.
type sweepSchema struct {
	Bullets []struct {
		Category string  `json:"category" jsonschema:"enum=key_point,enum=decision,enum=action_item,enum=question"`
		Text     string  `json:"text"`
		Owner    *string `json:"owner"`
	} `json:"bullets"`
}

type sweepBullet struct {
	Category *string `json:"category"`
	Text     *string `json:"text"`
	Owner    *string `json:"owner"`
}

// Extractor turns summary-bound intents and whole transcripts into bullets,
// accumulating them per session.
type Extractor struct {
	client gateway.Client
	store  *Store
	now    func() time.Time
}

func NewExtractor(client gateway.Client, store *Store) *Extractor {
	return &Extractor{client: client, store: store, now: time.Now}
}

func (e *Extractor) Store() *Store {
	return e.store
}

// FromIntent creates one bullet from the intent's excerpt and returns it if it
// was not a duplicate of the session's existing bullets.
func (e *Extractor) FromIntent(ctx context.Context, req model.AgentRequest) model.Result[model.SummaryResponse] {
	bullet := e.newBullet(req.Intent.Excerpt, model.CategoryFor(req.Intent.Type), "")
	accepted := e.store.Append(req.SessionID, []model.SummaryBullet{bullet})

	slog.DebugContext(ctx, "summary bullet processed",
		"category", bullet.Category,
		"accepted", len(accepted) > 0)

	return model.Ok(model.SummaryResponse{Bullets: accepted})
}

// Sweep extracts every bullet from a full transcript in one backend call and
// returns the ones new to the session. Failures return no bullets.
func (e *Extractor) Sweep(ctx context.Context, sessionID, transcript string) model.Result[model.SummaryResponse] {
	sc := logger.StartSpan(ctx, "agent.summary.sweep")
	defer sc.End()
	ctx = sc.Context()

	empty := model.SummaryResponse{Bullets: []model.SummaryBullet{}}

	raw, err := e.client.Generate(ctx, gateway.Request{
		SystemPrompt: sweepPrompt,
		UserPrompt:   sweepUserPrompt(transcript),
		JSONMode:     true,
		SchemaName:   llm.StageSummarySweep,
		Schema:       gateway.GenerateSchema[sweepSchema](),
	})
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "summary sweep failed", "error", err)
		return model.Degrade(empty, err)
	}

	candidates, err := decodeSweep(raw)
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "summary sweep response unusable",
			"error", err,
			"response", logger.Truncate(raw, 200))
		return model.Degrade(empty, err)
	}

	incoming := make([]model.SummaryBullet, 0, len(candidates))
	for _, c := range candidates {
		owner := ""
		if c.Owner != nil {
			owner = strings.TrimSpace(*c.Owner)
		}
		incoming = append(incoming, e.newBullet(*c.Text, model.BulletCategory(*c.Category), owner))
	}

	accepted := e.store.Append(sessionID, incoming)

	sc.SetAttributes(
		attribute.Int("summary.extracted", len(incoming)),
		attribute.Int("summary.accepted", len(accepted)),
	)
	slog.InfoContext(ctx, "summary sweep complete",
		"extracted", len(incoming),
		"accepted", len(accepted))

	return model.Ok(model.SummaryResponse{Bullets: accepted})
}

// decodeSweep keeps entries with a non-empty text and a known category. One
// malformed entry does not discard its siblings.
func decodeSweep(raw string) ([]sweepBullet, error) {
	var envelope struct {
		Bullets *[]json.RawMessage `json:"bullets"`
	}
	if err := json.Unmarshal([]byte(gateway.ExtractJSON(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("decode sweep: %w", err)
	}
	if envelope.Bullets == nil {
		return nil, errNoBulletsArray
	}

	var out []sweepBullet
	for _, item := range *envelope.Bullets {
		var b sweepBullet
		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}
		if b.Text == nil || strings.TrimSpace(*b.Text) == "" || b.Category == nil {
			continue
		}
		if !model.BulletCategory(*b.Category).Valid() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (e *Extractor) newBullet(text string, category model.BulletCategory, owner string) model.SummaryBullet {
	return model.SummaryBullet{
		ID:        id.NewString(),
		Text:      text,
		Category:  category,
		Owner:     owner,
		Timestamp: e.now().UnixMilli(),
	}
}
