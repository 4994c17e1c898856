// Copyright 2025 James Ross
package batch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/self-sensored/batch-ingest/internal/batch"
	"github.com/self-sensored/batch-ingest/internal/config"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/storage"
)

type recordingConn struct {
	mu    *sync.Mutex
	rows  *int
	fail  func(table string) error
}

func (c *recordingConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if c.fail != nil {
		if err := c.fail(table); err != nil {
			return err
		}
	}
	c.mu.Lock()
	*c.rows += len(rows)
	c.mu.Unlock()
	return nil
}
func (c *recordingConn) Release() {}

type fakeStore struct {
	mu   sync.Mutex
	rows int
	fail func(table string) error
}

func (s *fakeStore) Acquire(ctx context.Context) (storage.Conn, error) {
	return &recordingConn{mu: &s.mu, rows: &s.rows, fail: s.fail}, nil
}
func (s *fakeStore) Classify(err error) storage.Classification { return storage.Fatal }
func (s *fakeStore) Close() error                              { return nil }

func newPayload(user uuid.UUID, now time.Time, n int) *model.IngestPayload {
	payload := &model.IngestPayload{}
	for i := 0; i < n; i++ {
		hr := 70
		payload.HeartRate = append(payload.HeartRate, model.HeartRateRecord{
			UserID:     user,
			RecordedAt: now.Add(time.Duration(i) * time.Minute),
			HeartRate:  &hr,
		})
	}
	return payload
}

func TestProcessBatchPersistsAllValidRecords(t *testing.T) {
	store := &fakeStore{}
	proc, err := batch.New(store, nil)
	require.NoError(t, err)

	user := uuid.New()
	now := time.Now().Add(-time.Hour)
	payload := newPayload(user, now, 10)

	result := proc.ProcessBatch(context.Background(), user, payload)

	assert.Equal(t, 10, result.ProcessedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 10, store.rows)
	assert.False(t, result.Cancelled)
}

func TestProcessBatchRejectsFutureTimestamps(t *testing.T) {
	store := &fakeStore{}
	proc, err := batch.New(store, nil)
	require.NoError(t, err)

	user := uuid.New()
	future := time.Now().Add(48 * time.Hour)
	hr := 70
	payload := &model.IngestPayload{
		HeartRate: []model.HeartRateRecord{{UserID: user, RecordedAt: future, HeartRate: &hr}},
	}

	result := proc.ProcessBatch(context.Background(), user, payload)

	assert.Equal(t, 0, result.ProcessedCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, model.HeartRate, result.Errors[0].Family)
}

func TestProcessBatchDeduplicatesWithinPayload(t *testing.T) {
	store := &fakeStore{}
	proc, err := batch.New(store, nil)
	require.NoError(t, err)

	user := uuid.New()
	now := time.Now().Add(-time.Hour)
	hr := 70
	payload := &model.IngestPayload{
		HeartRate: []model.HeartRateRecord{
			{UserID: user, RecordedAt: now, HeartRate: &hr},
			{UserID: user, RecordedAt: now, HeartRate: &hr},
		},
	}

	result := proc.ProcessBatch(context.Background(), user, payload)

	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, 1, result.DeduplicationStats.TotalDuplicates)
}

func TestProcessBatchConservesProcessedPlusFailedCount(t *testing.T) {
	store := &fakeStore{}
	proc, err := batch.New(store, nil)
	require.NoError(t, err)

	user := uuid.New()
	now := time.Now().Add(-time.Hour)
	future := now.Add(72 * time.Hour)
	hr := 70
	payload := &model.IngestPayload{
		HeartRate: []model.HeartRateRecord{
			{UserID: user, RecordedAt: now, HeartRate: &hr},
			{UserID: user, RecordedAt: now.Add(time.Minute), HeartRate: &hr},
			{UserID: user, RecordedAt: future, HeartRate: &hr},
		},
	}

	result := proc.ProcessBatch(context.Background(), user, payload)

	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 1, result.FailedCount)
}

func TestProcessBatchSequentialModeProcessesAllRecords(t *testing.T) {
	store := &fakeStore{}
	cfg := config.DefaultBatchConfig()
	cfg.EnableParallelProcessing = false
	proc, err := batch.NewWithConfig(store, cfg, config.DefaultValidationConfig(), nil)
	require.NoError(t, err)

	user := uuid.New()
	now := time.Now().Add(-time.Hour)
	payload := newPayload(user, now, 5)

	result := proc.ProcessBatch(context.Background(), user, payload)

	assert.Equal(t, 5, result.ProcessedCount)
}

func TestProcessBatchReportsChunkProgressWhenEnabled(t *testing.T) {
	store := &fakeStore{}
	cfg := config.DefaultBatchConfig()
	cfg.ChunkSize = 3
	proc, err := batch.NewWithConfig(store, cfg, config.DefaultValidationConfig(), nil)
	require.NoError(t, err)

	user := uuid.New()
	now := time.Now().Add(-time.Hour)
	payload := newPayload(user, now, 10)

	result := proc.ProcessBatch(context.Background(), user, payload)

	require.NotNil(t, result.ChunkProgress)
	assert.Equal(t, result.ChunkProgress.TotalChunks, result.ChunkProgress.CompletedChunks)
}

func TestNewWithConfigFailsOnInvalidConfig(t *testing.T) {
	store := &fakeStore{}
	cfg := config.DefaultBatchConfig()
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = 0

	_, err := batch.NewWithConfig(store, cfg, config.DefaultValidationConfig(), nil)
	require.Error(t, err)
}

func TestProcessBatchCancelledContextStopsNewFamilies(t *testing.T) {
	store := &fakeStore{}
	cfg := config.DefaultBatchConfig()
	cfg.EnableParallelProcessing = false
	proc, err := batch.NewWithConfig(store, cfg, config.DefaultValidationConfig(), nil)
	require.NoError(t, err)

	user := uuid.New()
	now := time.Now().Add(-time.Hour)
	payload := newPayload(user, now, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := proc.ProcessBatch(ctx, user, payload)

	assert.True(t, result.Cancelled)
	assert.Equal(t, 0, result.ProcessedCount)
}
