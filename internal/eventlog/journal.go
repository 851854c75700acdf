// Package eventlog journals broadcast envelopes into per-session redis
// streams so late viewers can replay a session.
package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

const (
	fieldEvent    = "event"
	fieldEnvelope = "envelope"
)

// streamClient is the part of the redis client the journal needs.
type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd
}

// Entry is one journaled envelope.
type Entry struct {
	ID       string
	Event    string
	Envelope json.RawMessage
}

type Journal struct {
	client streamClient
	prefix string
	maxLen int64
}

func New(client streamClient, prefix string, maxLen int64) *Journal {
	return &Journal{client: client, prefix: prefix, maxLen: maxLen}
}

func (j *Journal) StreamKey(sessionID string) string {
	return j.prefix + ":" + sessionID
}

// Append writes the envelope to its session stream, trimming it to roughly
// maxLen entries.
func (j *Journal) Append(ctx context.Context, env model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: j.StreamKey(env.SessionID),
		Values: map[string]any{
			fieldEvent:    string(env.Event),
			fieldEnvelope: string(data),
		},
	}
	if j.maxLen > 0 {
		args.MaxLen = j.maxLen
		args.Approx = true
	}

	if err := j.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("journal %s: %w", env.Event, err)
	}
	return nil
}

// Read returns entries after lastID, blocking up to block for new ones. A
// timeout with nothing new returns no entries and no error.
func (j *Journal) Read(ctx context.Context, sessionID, lastID string, block time.Duration, count int64) ([]Entry, error) {
	res, err := j.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{j.StreamKey(sessionID), lastID},
		Block:   block,
		Count:   count,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	var entries []Entry
	for _, stream := range res {
		for _, msg := range stream.Messages {
			entries = append(entries, Entry{
				ID:       msg.ID,
				Event:    stringField(msg.Values, fieldEvent),
				Envelope: json.RawMessage(stringField(msg.Values, fieldEnvelope)),
			})
		}
	}
	return entries, nil
}

func stringField(values map[string]any, key string) string {
	if s, ok := values[key].(string); ok {
		return s
	}
	return ""
}
