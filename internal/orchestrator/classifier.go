package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/llm"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

var errNoIntentsArray = errors.New("response has no intents array")

// IntentClassifier turns a transcript chunk into typed intents.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) model.Result[model.Classification]
}

type Classifier struct {
	client gateway.Client
}

func NewClassifier(client gateway.Client) *Classifier {
	return &Classifier{client: client}
}

// classificationSchema describes the response for backends that accept a JSON schema.
type classificationSchema struct {
	Intents []struct {
		Type       string  `json:"type" jsonschema:"enum=DATA_CLAIM,enum=ACTION_ITEM,enum=REFERENCE,enum=DECISION,enum=KEY_POINT,enum=EMAIL_MENTION,enum=DOC_MENTION,enum=QUESTION,enum=TOPIC_SHIFT"`
		Confidence float64 `json:"confidence" jsonschema:"minimum=0,maximum=1"`
		Excerpt    string  `json:"excerpt"`
	} `json:"intents"`
}

// Classify never fails: any backend or decoding problem yields a degraded
// result with no intents.
func (c *Classifier) Classify(ctx context.Context, text string) model.Result[model.Classification] {
	start := time.Now()
	sc := logger.StartSpan(ctx, "orchestrator.classify")
	defer sc.End()
	ctx = sc.Context()

	result := model.Classification{Intents: []model.ClassifiedIntent{}, RawText: text}

	raw, err := c.client.Generate(ctx, gateway.Request{
		SystemPrompt: classificationPrompt,
		UserPrompt:   classificationUserPrompt(text),
		JSONMode:     true,
		SchemaName:   llm.StageClassify,
		Schema:       gateway.GenerateSchema[classificationSchema](),
		Temperature:  gateway.Temp(0),
	})
	if err != nil {
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		sc.RecordError(err)
		slog.WarnContext(ctx, "intent classification failed, returning no intents",
			"error", err,
			"retryable", gateway.IsRetryable(ctx, err),
			"text", logger.Truncate(text, 100))
		return model.Degrade(result, err)
	}

	intents, err := decodeIntents(raw)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "intent classification response unusable",
			"error", err,
			"response", logger.Truncate(raw, 200))
		return model.Degrade(result, err)
	}

	result.Intents = intents
	sc.SetAttributes(attribute.Int("orchestrator.intents", len(intents)))
	slog.DebugContext(ctx, "intents classified",
		"count", len(intents),
		"duration_ms", result.ProcessingTimeMs)

	return model.Ok(result)
}

// decodeIntents keeps candidates whose type is recognized, whose confidence is
// a number of at least MinConfidence and whose excerpt is a string. Every
// surviving intent starts at priority 0.
func decodeIntents(raw string) ([]model.ClassifiedIntent, error) {
	var envelope struct {
		Intents json.RawMessage `json:"intents"`
	}
	if err := json.Unmarshal([]byte(gateway.ExtractJSON(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}

	var candidates []map[string]any
	if len(envelope.Intents) == 0 || json.Unmarshal(envelope.Intents, &candidates) != nil {
		return nil, errNoIntentsArray
	}

	intents := make([]model.ClassifiedIntent, 0, len(candidates))
	for _, cand := range candidates {
		typ, _ := cand["type"].(string)
		confidence, isNumber := cand["confidence"].(float64)
		excerpt, isString := cand["excerpt"].(string)

		if !model.IntentType(typ).Valid() || !isNumber || confidence < model.MinConfidence || !isString {
			continue
		}

		intents = append(intents, model.ClassifiedIntent{
			Type:       model.IntentType(typ),
			Confidence: confidence,
			Excerpt:    excerpt,
			Priority:   0,
		})
	}

	return intents, nil
}
