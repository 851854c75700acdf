package llm

import (
	"context"
	"time"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"go.opentelemetry.io/otel/attribute"
)

// Call describes one completed gateway round-trip.
type Call struct {
	Stage        string
	Model        string
	SystemPrompt string
	UserPrompt   string
	Response     string
	Err          error
	StartedAt    time.Time
	Duration     time.Duration
}

// Recorder receives every call made through a client wrapped with WithRecorder.
// Implementations must not block.
type Recorder interface {
	RecordCall(ctx context.Context, call Call)
}

// WithTimeout bounds every Generate call by d. Zero or negative d returns c unchanged.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{next: c, timeout: d}
}

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

func (t *timeoutClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *timeoutClient) Model() string {
	return t.next.Model()
}

// WithRecorder reports every call to r after it completes.
func WithRecorder(c Client, r Recorder) Client {
	if r == nil {
		return c
	}
	return &recordingClient{next: c, recorder: r}
}

type recordingClient struct {
	next     Client
	recorder Recorder
}

func (r *recordingClient) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := r.next.Generate(ctx, req)
	r.recorder.RecordCall(ctx, Call{
		Stage:        req.SchemaName,
		Model:        r.next.Model(),
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		Response:     text,
		Err:          err,
		StartedAt:    start,
		Duration:     time.Since(start),
	})
	return text, err
}

func (r *recordingClient) Model() string {
	return r.next.Model()
}

// WithTracing wraps every call in an "llm.generate" span.
func WithTracing(c Client) Client {
	return &tracingClient{next: c}
}

type tracingClient struct {
	next Client
}

func (t *tracingClient) Generate(ctx context.Context, req Request) (string, error) {
	sc := logger.StartSpan(ctx, "llm.generate")
	defer sc.End()
	sc.SetAttributes(
		attribute.String("llm.model", t.next.Model()),
		attribute.String("llm.stage", req.SchemaName),
		attribute.Bool("llm.json_mode", req.JSONMode || req.Schema != nil),
	)

	text, err := t.next.Generate(sc.Context(), req)
	if err != nil {
		sc.RecordError(err)
	}
	sc.SetAttributes(attribute.Int("llm.response_bytes", len(text)))
	return text, err
}

func (t *tracingClient) Model() string {
	return t.next.Model()
}

// Unwrap returns the innermost client below any decorators.
func Unwrap(c Client) Client {
	for {
		switch w := c.(type) {
		case *timeoutClient:
			c = w.next
		case *recordingClient:
			c = w.next
		case *tracingClient:
			c = w.next
		default:
			return c
		}
	}
}
