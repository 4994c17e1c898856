// Copyright 2025 James Ross

// Package progress provides thread-safe counters for total/completed
// chunks and per-family completion, readable via a non-blocking snapshot
// at any point during a batch.
package progress

import (
	"sync"
	"sync/atomic"

	"github.com/self-sensored/batch-ingest/internal/model"
)

// Snapshot is a point-in-time read of progress counters. It is consistent
// per-counter, not globally atomic across counters.
type Snapshot struct {
	TotalChunks     int64
	CompletedChunks int64
	PerFamily       map[model.Family]int64
}

// Tracker is a thread-safe progress reporter. The zero value is not
// usable; construct with New.
type Tracker struct {
	total     int64
	completed int64

	mu        sync.Mutex
	perFamily map[model.Family]*int64
}

// New constructs a Tracker with totalChunks fixed at planning time.
func New(totalChunks int64) *Tracker {
	t := &Tracker{total: totalChunks, perFamily: make(map[model.Family]*int64, len(model.AllFamilies))}
	for _, f := range model.AllFamilies {
		var n int64
		t.perFamily[f] = &n
	}
	return t
}

// CompleteChunk records completion of one chunk belonging to family f.
// Safe for concurrent use by multiple family tasks.
func (t *Tracker) CompleteChunk(f model.Family) {
	atomic.AddInt64(&t.completed, 1)
	t.mu.Lock()
	counter := t.perFamily[f]
	t.mu.Unlock()
	if counter != nil {
		atomic.AddInt64(counter, 1)
	}
}

// Snapshot takes a non-blocking read of every counter.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		TotalChunks:     atomic.LoadInt64(&t.total),
		CompletedChunks: atomic.LoadInt64(&t.completed),
		PerFamily:       make(map[model.Family]int64, len(model.AllFamilies)),
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for f, counter := range t.perFamily {
		s.PerFamily[f] = atomic.LoadInt64(counter)
	}
	return s
}
