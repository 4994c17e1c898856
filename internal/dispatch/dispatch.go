// Copyright 2025 James Ross

// Package dispatch partitions a validated, deduplicated family sequence
// into chunks and drives them through the chunk executor under a
// concurrency gate. One dispatch.Run call handles one family; the batch
// orchestrator runs one Run per family, in parallel or in sequence
// depending on configuration.
package dispatch

import (
	"context"

	"github.com/self-sensored/batch-ingest/internal/executor"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/progress"
)

// Chunk groups a contiguous slice of records with its position in the
// family's chunk sequence.
type Chunk[T model.Binder] struct {
	Index   int
	Records []T
}

// ChunkSlice partitions records into chunks of at most size, preserving
// payload order. size must be positive.
func ChunkSlice[T model.Binder](records []T, size int) []Chunk[T] {
	if size <= 0 || len(records) == 0 {
		return nil
	}
	chunks := make([]Chunk[T], 0, (len(records)+size-1)/size)
	for start, idx := 0, 0; start < len(records); start, idx = start+size, idx+1 {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, Chunk[T]{Index: idx, Records: records[start:end]})
	}
	return chunks
}

// ChunkError attributes an executor failure to a chunk's position in the
// family's chunk sequence, along with the final attempt count.
type ChunkError struct {
	Family   model.Family
	ChunkIdx int
	Attempts int
	Err      error
}

// FamilyOutcome aggregates the result of dispatching one family's chunks.
type FamilyOutcome struct {
	Family    model.Family
	Processed int
	Failed    int
	Errors    []ChunkError
}

// rowsOf renders a chunk's records into the positional bind-value rows
// the executor and storage layer expect.
func rowsOf[T model.Binder](records []T) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return rows
}

// Run dispatches all chunks for one family sequentially: it acquires one
// semaphore permit for the family's entire lifetime (chunks within a
// family are awaited sequentially per the concurrency model), then issues
// each chunk through exec in payload order. Cancellation is checked
// between chunks, never mid-chunk, so an in-flight chunk always
// completes atomically before Run observes ctx is done.
func Run[T model.Binder](
	ctx context.Context,
	f model.Family,
	table string,
	columns []string,
	chunks []Chunk[T],
	exec *executor.Executor,
	sem chan struct{},
	tracker *progress.Tracker,
) FamilyOutcome {
	out := FamilyOutcome{Family: f}
	if len(chunks) == 0 {
		return out
	}

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return out
	}
	defer func() { <-sem }()

	for _, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}

		outcome := exec.Insert(ctx, f, chunk.Index, table, columns, rowsOf(chunk.Records))
		if tracker != nil {
			tracker.CompleteChunk(f)
		}

		if outcome.Succeeded() {
			out.Processed += outcome.RowCount
			continue
		}
		out.Failed += outcome.RowCount
		out.Errors = append(out.Errors, ChunkError{
			Family:   f,
			ChunkIdx: chunk.Index,
			Attempts: outcome.Attempts,
			Err:      outcome.Err,
		})
	}

	return out
}
