// Package store persists gateway calls to postgres.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avishaychauhan/EchoLabs/common/id"
	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/core/db"
)

//go:embed schema/llm_calls.sql
var callsSchema string

const insertCall = `INSERT INTO llm_calls
    (id, session_id, agent, stage, model, system_prompt, user_prompt, response, error, latency_ms, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// TxRunner runs fn inside a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(q db.Querier) error) error
}

// CallRow is one gateway call as stored.
type CallRow struct {
	ID           int64
	SessionID    *string
	Agent        *string
	Stage        string
	Model        string
	SystemPrompt string
	UserPrompt   string
	Response     string
	Error        *string
	LatencyMs    int32
	StartedAt    time.Time
}

type CallLogConfig struct {
	FlushInterval  time.Duration
	FlushThreshold int
	BufferMax      int
}

func DefaultCallLogConfig() CallLogConfig {
	return CallLogConfig{FlushInterval: 2 * time.Second, FlushThreshold: 50, BufferMax: 1000}
}

// CallLog buffers gateway calls and writes them in batches from the Start
// loop. RecordCall never blocks the caller; when the buffer is full the
// oldest rows are dropped.
type CallLog struct {
	db  TxRunner
	cfg CallLogConfig

	mu      sync.Mutex
	buffer  []CallRow
	flushMu sync.Mutex

	// flushReq holds at most one pending threshold flush for the Start loop.
	flushReq chan struct{}
	done     chan struct{}
}

func NewCallLog(runner TxRunner, cfg CallLogConfig) *CallLog {
	return &CallLog{
		db:       runner,
		cfg:      cfg,
		buffer:   make([]CallRow, 0, cfg.FlushThreshold),
		flushReq: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Migrate creates the llm_calls table when missing.
func (l *CallLog) Migrate(ctx context.Context) error {
	return l.db.WithTx(ctx, func(q db.Querier) error {
		if _, err := q.Exec(ctx, callsSchema); err != nil {
			return fmt.Errorf("create llm_calls: %w", err)
		}
		return nil
	})
}

func (l *CallLog) RecordCall(ctx context.Context, call gateway.Call) {
	fields := logger.GetLogFields(ctx)
	row := CallRow{
		ID:           id.New(),
		SessionID:    fields.SessionID,
		Agent:        fields.Agent,
		Stage:        call.Stage,
		Model:        call.Model,
		SystemPrompt: call.SystemPrompt,
		UserPrompt:   call.UserPrompt,
		Response:     call.Response,
		LatencyMs:    int32(call.Duration.Milliseconds()),
		StartedAt:    call.StartedAt,
	}
	if call.Err != nil {
		msg := call.Err.Error()
		row.Error = &msg
	}

	l.add(ctx, row)
}

func (l *CallLog) add(ctx context.Context, row CallRow) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg.BufferMax > 0 && len(l.buffer) >= l.cfg.BufferMax {
		dropped := len(l.buffer) - l.cfg.BufferMax + 1
		l.buffer = l.buffer[dropped:]
		slog.WarnContext(ctx, "llm call log buffer full, dropping oldest rows", "dropped", dropped)
	}

	l.buffer = append(l.buffer, row)

	if l.cfg.FlushThreshold > 0 && len(l.buffer) >= l.cfg.FlushThreshold {
		select {
		case l.flushReq <- struct{}{}:
		default:
		}
	}
}

// Start flushes on every interval and whenever the buffer reaches the
// threshold, until ctx ends; then it flushes once more.
func (l *CallLog) Start(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.FlushInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Flush()
			case <-l.flushReq:
				l.Flush()
			case <-ctx.Done():
				l.Flush()
				close(l.done)
				return
			}
		}
	}()
}

// Wait blocks until the final flush after Start's context ended.
func (l *CallLog) Wait() {
	<-l.done
}

func (l *CallLog) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buffer)
}

// Flush writes the buffered rows in one transaction. Rows from a failed
// write are dropped.
func (l *CallLog) Flush() {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.mu.Lock()
	if len(l.buffer) == 0 {
		l.mu.Unlock()
		return
	}
	batch := l.buffer
	l.buffer = make([]CallRow, 0, l.cfg.FlushThreshold)
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := l.db.WithTx(ctx, func(q db.Querier) error {
		for _, r := range batch {
			if _, err := q.Exec(ctx, insertCall,
				r.ID, r.SessionID, r.Agent, r.Stage, r.Model, r.SystemPrompt, r.UserPrompt,
				r.Response, r.Error, r.LatencyMs, r.StartedAt); err != nil {
				return fmt.Errorf("insert llm call %d: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to write llm call log", "error", err, "rows", len(batch))
		return
	}

	slog.DebugContext(ctx, "llm call log flushed", "rows", len(batch))
}
