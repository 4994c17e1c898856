// Copyright 2025 James Ross
package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/self-sensored/batch-ingest/internal/config"
	"github.com/self-sensored/batch-ingest/internal/model"
)

func TestDefaultBatchConfigIsValid(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.EnableParallelProcessing)
	assert.True(t, cfg.EnableIntraBatchDeduplication)
	assert.True(t, cfg.EnableProgressTracking)
}

func TestEffectiveChunkSizeCapsAtBudget(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	cfg.ChunkSize = 1_000_000
	for _, f := range model.AllFamilies {
		size := cfg.EffectiveChunkSize(f)
		assert.LessOrEqual(t, size*model.Columns[f], 52_428)
	}
}

func TestOverrideWinsOverBlanketChunkSize(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	cfg.ChunkSizeOverrides = map[model.Family]int{model.HeartRate: 500}
	assert.Equal(t, 500, cfg.EffectiveChunkSize(model.HeartRate))
}

func TestValidateRejectsOverrideExceedingBudget(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	cfg.ChunkSizeOverrides = map[model.Family]int{model.BloodPressure: 100_000}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedBackoffBounds(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	cfg.InitialBackoff = cfg.MaxBackoff * 2
	require.Error(t, cfg.Validate())
}

func TestLoadBatchConfigWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadBatchConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBatchConfig().MaxRetries, cfg.MaxRetries)
}

func TestPerformanceBenchmarkContainsRequiredSections(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	report := cfg.PerformanceBenchmark()
	for _, substr := range []string{
		"STORY-OPTIMIZATION-001",
		"OPTIMIZATION SUMMARY",
		"POSTGRESQL PARAMETER USAGE",
		"VALIDATION RESULTS",
	} {
		assert.Contains(t, report, substr)
	}
}
