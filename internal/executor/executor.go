// Copyright 2025 James Ross

// Package executor inserts one chunk of one family exactly once under a
// retry/backoff policy, recording attempts, elapsed time, and outcome.
package executor

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/obs"
	"github.com/self-sensored/batch-ingest/internal/storage"
)

// Outcome reports the final disposition of one chunk insert.
type Outcome struct {
	Family    model.Family
	ChunkIdx  int
	Attempts  int
	Elapsed   time.Duration
	RowCount  int
	Err       error
}

// Succeeded reports whether the chunk ultimately persisted.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Config carries the retry policy: max attempts and the exponential
// backoff bounds, doubling between attempts and capped at MaxBackoff.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Executor inserts chunks against a storage.Store under Config's retry
// policy.
type Executor struct {
	store storage.Store
	cfg   Config
}

// New constructs an Executor bound to store with the given retry policy.
func New(store storage.Store, cfg Config) *Executor {
	return &Executor{store: store, cfg: cfg}
}

// Insert persists one chunk of family f at chunkIdx, retrying retriable
// storage errors up to cfg.MaxRetries times with exponential backoff.
// Integrity/semantic (Fatal) errors are recorded on the first occurrence
// without further attempts. Never partially commits: a chunk either
// persists in full or contributes a single recorded failure.
func (e *Executor) Insert(ctx context.Context, f model.Family, chunkIdx int, table string, columns []string, rows [][]any) Outcome {
	start := time.Now()
	attempts := 0

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.cfg.InitialBackoff
	policy.MaxInterval = e.cfg.MaxBackoff
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0 // bounded by WithMaxRetries, not wall-clock

	operation := func() error {
		attempts++
		conn, err := e.store.Acquire(ctx)
		if err != nil {
			if e.store.Classify(err) == storage.Fatal {
				return backoff.Permanent(err)
			}
			return err
		}
		defer conn.Release()

		if err := conn.BulkInsert(ctx, table, columns, rows); err != nil {
			if e.store.Classify(err) == storage.Fatal {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	withCtx := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(e.cfg.MaxRetries)), ctx)

	err := backoff.Retry(operation, withCtx)
	elapsed := time.Since(start)

	obs.ChunkAttempts.WithLabelValues(string(f)).Observe(float64(attempts))
	obs.ChunkDuration.WithLabelValues(string(f)).Observe(elapsed.Seconds())

	return Outcome{
		Family:   f,
		ChunkIdx: chunkIdx,
		Attempts: attempts,
		Elapsed:  elapsed,
		RowCount: len(rows),
		Err:      err,
	}
}
