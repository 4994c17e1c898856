// Copyright 2025 James Ross
package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/self-sensored/batch-ingest/internal/dispatch"
	"github.com/self-sensored/batch-ingest/internal/executor"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/storage"
)

func TestChunkSlicePreservesOrderAndSize(t *testing.T) {
	user := uuid.New()
	now := time.Now()
	records := make([]model.HeartRateRecord, 5)
	for i := range records {
		records[i] = model.HeartRateRecord{UserID: user, RecordedAt: now.Add(time.Duration(i) * time.Minute)}
	}

	chunks := dispatch.ChunkSlice(records, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Len(t, chunks[0].Records, 2)
	assert.Len(t, chunks[2].Records, 1)
	assert.Equal(t, records[4].RecordedAt, chunks[2].Records[0].RecordedAt)
}

func TestChunkSliceEmptyInput(t *testing.T) {
	assert.Nil(t, dispatch.ChunkSlice([]model.HeartRateRecord{}, 10))
}

type alwaysSucceedConn struct{}

func (alwaysSucceedConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	return nil
}
func (alwaysSucceedConn) Release() {}

type alwaysSucceedStore struct{}

func (alwaysSucceedStore) Acquire(ctx context.Context) (storage.Conn, error) { return alwaysSucceedConn{}, nil }
func (alwaysSucceedStore) Classify(err error) storage.Classification        { return storage.Retriable }
func (alwaysSucceedStore) Close() error                                     { return nil }

type alwaysFailStore struct{}

func (alwaysFailStore) Acquire(ctx context.Context) (storage.Conn, error) {
	return nil, errors.New("boom")
}
func (alwaysFailStore) Classify(err error) storage.Classification { return storage.Fatal }
func (alwaysFailStore) Close() error                              { return nil }

func TestRunReportsProcessedOnSuccess(t *testing.T) {
	user := uuid.New()
	now := time.Now()
	records := []model.HeartRateRecord{
		{UserID: user, RecordedAt: now},
		{UserID: user, RecordedAt: now.Add(time.Minute)},
	}
	chunks := dispatch.ChunkSlice(records, 10)
	exec := executor.New(alwaysSucceedStore{}, executor.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	sem := make(chan struct{}, 1)

	outcome := dispatch.Run(context.Background(), model.HeartRate, "heart_rate_metrics", []string{"user_id"}, chunks, exec, sem, nil)

	assert.Equal(t, 2, outcome.Processed)
	assert.Equal(t, 0, outcome.Failed)
	assert.Empty(t, outcome.Errors)
}

func TestRunAttributesFailureToChunkIndex(t *testing.T) {
	user := uuid.New()
	now := time.Now()
	records := []model.HeartRateRecord{{UserID: user, RecordedAt: now}}
	chunks := dispatch.ChunkSlice(records, 10)
	exec := executor.New(alwaysFailStore{}, executor.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	sem := make(chan struct{}, 1)

	outcome := dispatch.Run(context.Background(), model.HeartRate, "heart_rate_metrics", []string{"user_id"}, chunks, exec, sem, nil)

	assert.Equal(t, 0, outcome.Processed)
	assert.Equal(t, 1, outcome.Failed)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, 0, outcome.Errors[0].ChunkIdx)
}

func TestRunStopsSchedulingNewChunksWhenCancelled(t *testing.T) {
	user := uuid.New()
	now := time.Now()
	records := make([]model.HeartRateRecord, 4)
	for i := range records {
		records[i] = model.HeartRateRecord{UserID: user, RecordedAt: now.Add(time.Duration(i) * time.Minute)}
	}
	chunks := dispatch.ChunkSlice(records, 1)
	exec := executor.New(alwaysSucceedStore{}, executor.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	sem := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := dispatch.Run(ctx, model.HeartRate, "heart_rate_metrics", []string{"user_id"}, chunks, exec, sem, nil)

	assert.Equal(t, 0, outcome.Processed)
	assert.Equal(t, 0, outcome.Failed)
}
