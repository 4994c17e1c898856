// Copyright 2025 James Ross
package memtrack_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/self-sensored/batch-ingest/internal/memtrack"
)

func TestSamplerReportsPositivePeak(t *testing.T) {
	s := memtrack.New()
	s.Start()
	time.Sleep(150 * time.Millisecond)
	peak := s.Stop()

	assert.Greater(t, peak, 0.0)
}

func TestPeakMBDoesNotDecreaseBeforeStop(t *testing.T) {
	s := memtrack.New()
	s.Start()
	time.Sleep(50 * time.Millisecond)
	first := s.PeakMB()
	time.Sleep(150 * time.Millisecond)
	second := s.PeakMB()
	s.Stop()

	assert.GreaterOrEqual(t, second, first)
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	s := memtrack.New()
	s.Start()
	s.Start() // should not panic or deadlock
	s.Stop()
}
