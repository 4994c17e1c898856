// Copyright 2025 James Ross
package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/self-sensored/batch-ingest/internal/config"
)

func TestDefaultValidationConfigBounds(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.HeartRate.Contains(15))
	assert.True(t, cfg.HeartRate.Contains(300))
	assert.False(t, cfg.HeartRate.Contains(14))
	assert.False(t, cfg.HeartRate.Contains(301))

	assert.Equal(t, 90.0, cfg.SpO2Critical)
	assert.Equal(t, 38.0, cfg.FeverThreshold)
	assert.Equal(t, 60, cfg.SleepIntervalToleranceMinutes)
}

func TestLoadValidationConfigWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadValidationConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultValidationConfig(), cfg)
}

func TestValidateRejectsInvertedBound(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	cfg.HeartRate = config.Bound{Min: 300, Max: 15}
	require.Error(t, cfg.Validate())
}
