package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/core/config"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// Orchestrator runs one final chunk through the pipeline.
type Orchestrator interface {
	Process(ctx context.Context, req model.OrchestratorRequest) (model.OrchestratorResponse, error)
}

// Sweeper extracts bullets from a whole transcript.
type Sweeper interface {
	Sweep(ctx context.Context, sessionID, transcript string) model.Result[model.SummaryResponse]
}

// BulletCounter reports how many bullets a session holds.
type BulletCounter interface {
	Count(sessionID string) int
}

type Broadcaster interface {
	Broadcast(ctx context.Context, event model.EventName, sessionID string, payload any)
}

// Result describes what happened to one ingested chunk.
type Result struct {
	Appended    bool                     `json:"appended"`
	FinalChunks int                      `json:"finalChunks"`
	Intents     []model.ClassifiedIntent `json:"intents"`
	Dispatched  []string                 `json:"dispatched"`
}

// Ingestor turns the capture layer's chunk stream into transcript updates,
// orchestration runs and periodic summary sweeps.
type Ingestor struct {
	acc          *Accumulator
	orchestrator Orchestrator
	sweeper      Sweeper
	bullets      BulletCounter
	broadcaster  Broadcaster
	cfg          config.TranscriptConfig

	wg sync.WaitGroup
}

func NewIngestor(acc *Accumulator, orchestrator Orchestrator, sweeper Sweeper, bullets BulletCounter, broadcaster Broadcaster, cfg config.TranscriptConfig) *Ingestor {
	return &Ingestor{
		acc:          acc,
		orchestrator: orchestrator,
		sweeper:      sweeper,
		bullets:      bullets,
		broadcaster:  broadcaster,
		cfg:          cfg,
	}
}

// Ingest echoes every chunk to viewers. Final chunks are appended and
// orchestrated with the transcript tail as context, and every SweepEvery-th
// final chunk starts a background summary sweep.
func (in *Ingestor) Ingest(ctx context.Context, sessionID string, chunk model.TranscriptChunk) (Result, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "echolens.transcript",
	})

	in.broadcaster.Broadcast(ctx, model.EventTranscriptUpdate, sessionID, model.TranscriptPayload{
		Text:      chunk.Text,
		IsFinal:   chunk.IsFinal,
		Timestamp: chunk.Timestamp,
	})

	if !chunk.IsFinal {
		return Result{Intents: []model.ClassifiedIntent{}, Dispatched: []string{}}, nil
	}

	finals, recent := in.acc.Append(sessionID, chunk.Text, in.cfg.ContextChars)

	resp, err := in.orchestrator.Process(ctx, model.OrchestratorRequest{
		Text:      chunk.Text,
		Timestamp: chunk.Timestamp,
		SessionID: sessionID,
		Context:   recent,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ingest chunk: %w", err)
	}

	if in.cfg.SweepEvery > 0 && finals%in.cfg.SweepEvery == 0 {
		in.startSweep(ctx, sessionID)
	}

	return Result{
		Appended:    true,
		FinalChunks: finals,
		Intents:     resp.Intents,
		Dispatched:  resp.Dispatched,
	}, nil
}

func (in *Ingestor) startSweep(ctx context.Context, sessionID string) {
	full := in.acc.Full(sessionID)
	ctx = context.WithoutCancel(ctx)

	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		in.Sweep(ctx, sessionID, full)
	}()
}

// Sweep runs a summary sweep and broadcasts the bullets it accepted.
func (in *Ingestor) Sweep(ctx context.Context, sessionID, transcript string) model.Result[model.SummaryResponse] {
	res := in.sweeper.Sweep(ctx, sessionID, transcript)
	if accepted := res.Value.Bullets; len(accepted) > 0 {
		in.broadcaster.Broadcast(ctx, model.EventSummaryUpdate, sessionID,
			model.NewSummaryPayload(accepted, in.bullets.Count(sessionID)))
	}

	slog.InfoContext(ctx, "transcript sweep finished",
		"accepted", len(res.Value.Bullets),
		"degraded", res.Degraded)
	return res
}

// Wait blocks until background sweeps have finished.
func (in *Ingestor) Wait() {
	in.wg.Wait()
}

// Reset forgets the session's transcript.
func (in *Ingestor) Reset(sessionID string) {
	in.acc.Reset(sessionID)
}
