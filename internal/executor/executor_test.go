// Copyright 2025 James Ross
package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/self-sensored/batch-ingest/internal/executor"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/storage"
)

type fakeConn struct {
	insertErr error
	calls     *int
}

func (c *fakeConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	*c.calls++
	return c.insertErr
}
func (c *fakeConn) Release() {}

type fakeStore struct {
	acquireErr   error
	insertErrs   []error // consumed in order across attempts
	classifyFunc func(error) storage.Classification
	calls        int
}

func (s *fakeStore) Acquire(ctx context.Context) (storage.Conn, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	var err error
	if len(s.insertErrs) > 0 {
		err, s.insertErrs = s.insertErrs[0], s.insertErrs[1:]
	}
	return &fakeConn{insertErr: err, calls: &s.calls}, nil
}

func (s *fakeStore) Classify(err error) storage.Classification {
	if s.classifyFunc != nil {
		return s.classifyFunc(err)
	}
	return storage.Retriable
}

func (s *fakeStore) Close() error { return nil }

var errTransient = errors.New("transient failure")
var errFatal = errors.New("integrity violation")

func TestInsertSucceedsOnFirstAttempt(t *testing.T) {
	store := &fakeStore{}
	exec := executor.New(store, executor.Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond})

	outcome := exec.Insert(context.Background(), model.HeartRate, 0, "heart_rate_metrics", []string{"user_id"}, [][]any{{"u1"}})

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, store.calls)
}

func TestInsertRetriesTransientErrorsThenSucceeds(t *testing.T) {
	store := &fakeStore{
		insertErrs: []error{errTransient, errTransient, nil},
	}
	exec := executor.New(store, executor.Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond})

	outcome := exec.Insert(context.Background(), model.HeartRate, 0, "heart_rate_metrics", []string{"user_id"}, [][]any{{"u1"}})

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 3, outcome.Attempts)
}

func TestInsertStopsAfterMaxRetriesExhausted(t *testing.T) {
	store := &fakeStore{
		insertErrs: []error{errTransient, errTransient, errTransient, errTransient},
	}
	exec := executor.New(store, executor.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond})

	outcome := exec.Insert(context.Background(), model.HeartRate, 0, "heart_rate_metrics", []string{"user_id"}, [][]any{{"u1"}})

	require.False(t, outcome.Succeeded())
	assert.Equal(t, 3, outcome.Attempts) // initial + 2 retries
}

func TestInsertDoesNotRetryFatalErrors(t *testing.T) {
	store := &fakeStore{
		insertErrs:   []error{errFatal},
		classifyFunc: func(err error) storage.Classification { return storage.Fatal },
	}
	exec := executor.New(store, executor.Config{MaxRetries: 5, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond})

	outcome := exec.Insert(context.Background(), model.HeartRate, 0, "heart_rate_metrics", []string{"user_id"}, [][]any{{"u1"}})

	require.False(t, outcome.Succeeded())
	assert.Equal(t, 1, outcome.Attempts)
}
