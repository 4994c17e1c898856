// Copyright 2025 James Ross
package batch

import (
	"time"

	"github.com/self-sensored/batch-ingest/internal/dedup"
	"github.com/self-sensored/batch-ingest/internal/dispatch"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/progress"
)

// RecordedError is one entry in BatchResult.Errors: a family, the chunk
// it belongs to (0 for validation failures, which happen before
// chunking), the final attempt number, and a one-line message. A chunk that ultimately succeeds
// contributes no error regardless of how many attempts it took.
type RecordedError struct {
	Family   model.Family
	ChunkIdx int
	Attempt  int
	Message  string
}

// BatchResult is the outcome of one process_batch call.
type BatchResult struct {
	ProcessedCount    int
	FailedCount       int
	Errors            []RecordedError
	ProcessingTime    time.Duration
	DeduplicationStats dedup.Stats
	MemoryPeakMB      *float64
	ChunkProgress     *progress.Snapshot
	Cancelled         bool
}

func (r *BatchResult) recordChunkErrors(errs []dispatch.ChunkError) {
	for _, ce := range errs {
		attempt := ce.Attempts
		msg := ""
		if ce.Err != nil {
			msg = ce.Err.Error()
		}
		r.Errors = append(r.Errors, RecordedError{
			Family:   ce.Family,
			ChunkIdx: ce.ChunkIdx,
			Attempt:  attempt,
			Message:  msg,
		})
	}
}
