// Copyright 2025 James Ross
package batch

import (
	"context"

	"github.com/self-sensored/batch-ingest/internal/dispatch"
	"github.com/self-sensored/batch-ingest/internal/executor"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/progress"
)

// FamilyJob is the non-generic handle the orchestrator holds for one
// family's work, regardless of that family's concrete record type. Each
// family's heterogeneous record type is erased behind familyJob[T].
type FamilyJob interface {
	Family() model.Family
	ChunkCount() int
	Run(ctx context.Context, exec *executor.Executor, sem chan struct{}, tracker *progress.Tracker) dispatch.FamilyOutcome
}

type familyJob[T model.Binder] struct {
	family    model.Family
	table     string
	columns   []string
	chunks    []dispatch.Chunk[T]
}

func newFamilyJob[T model.Binder](f model.Family, records []T, chunkSize int) FamilyJob {
	var zero T
	return &familyJob[T]{
		family:  f,
		table:   f.Table(),
		columns: zero.ColumnNames(),
		chunks:  dispatch.ChunkSlice(records, chunkSize),
	}
}

func (j *familyJob[T]) Family() model.Family { return j.family }
func (j *familyJob[T]) ChunkCount() int      { return len(j.chunks) }

func (j *familyJob[T]) Run(ctx context.Context, exec *executor.Executor, sem chan struct{}, tracker *progress.Tracker) dispatch.FamilyOutcome {
	return dispatch.Run(ctx, j.family, j.table, j.columns, j.chunks, exec, sem, tracker)
}
