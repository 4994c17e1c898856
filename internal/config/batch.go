// Copyright 2025 James Ross
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/self-sensored/batch-ingest/internal/chunkbudget"
	"github.com/self-sensored/batch-ingest/internal/model"
)

// BatchConfig controls chunking, retry, concurrency and observability
// behavior of the batch processor. It is immutable once constructed: a
// BatchProcessor validates it at build time and holds it by value for the
// life of the processor.
type BatchConfig struct {
	MaxRetries                    int
	InitialBackoff                time.Duration
	MaxBackoff                    time.Duration
	EnableParallelProcessing      bool
	ChunkSize                     int
	ChunkSizeOverrides            map[model.Family]int
	MemoryLimitMB                 float64
	EnableProgressTracking        bool
	EnableIntraBatchDeduplication bool
	ConcurrencyLimit              int
}

// DefaultBatchConfig returns the baseline configuration: 3 retries, 100ms
// initial / 5s max backoff, parallel family dispatch, a 1000-row blanket
// chunk size (narrowed per family by the parameter budget), a 500MB soft
// memory ceiling, progress tracking and intra-batch dedup both on.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		MaxRetries:                    3,
		InitialBackoff:                100 * time.Millisecond,
		MaxBackoff:                    5 * time.Second,
		EnableParallelProcessing:      true,
		ChunkSize:                     1000,
		ChunkSizeOverrides:            map[model.Family]int{},
		MemoryLimitMB:                 500.0,
		EnableProgressTracking:        true,
		EnableIntraBatchDeduplication: true,
		ConcurrencyLimit:              0,
	}
}

// EffectiveChunkSize resolves the chunk size to use for a family: an
// explicit per-family override if one was set, otherwise the blanket
// ChunkSize capped at the family's parameter-budget maximum.
func (c BatchConfig) EffectiveChunkSize(f model.Family) int {
	if override, ok := c.ChunkSizeOverrides[f]; ok && override > 0 {
		return override
	}
	max := chunkbudget.MaxChunkSize(f)
	if c.ChunkSize <= 0 || c.ChunkSize > max {
		return max
	}
	return c.ChunkSize
}

// Validate enforces the parameter budget invariant (spec.md §3.3.1) over
// every family's effective chunk size. Boundary sizes exactly at the
// budget ceiling are accepted.
func (c BatchConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("batch config: max_retries must be >= 0")
	}
	if c.InitialBackoff < 0 || c.MaxBackoff < 0 {
		return fmt.Errorf("batch config: backoff durations must be >= 0")
	}
	if c.InitialBackoff > c.MaxBackoff {
		return fmt.Errorf("batch config: initial_backoff_ms must be <= max_backoff_ms")
	}
	sizes := make(map[model.Family]int, len(model.AllFamilies))
	for _, f := range model.AllFamilies {
		sizes[f] = c.EffectiveChunkSize(f)
		if override, ok := c.ChunkSizeOverrides[f]; ok && override > 0 {
			sizes[f] = override
		}
	}
	if err := chunkbudget.Validate(sizes); err != nil {
		return err
	}
	return nil
}

// LoadBatchConfig reads a YAML file (if present) and BATCH_*-prefixed
// environment overrides into a BatchConfig, layered as defaults, then
// file, then environment, then an explicit validation pass.
func LoadBatchConfig(path string) (BatchConfig, error) {
	def := DefaultBatchConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("batch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("initial_backoff_ms", def.InitialBackoff.Milliseconds())
	v.SetDefault("max_backoff_ms", def.MaxBackoff.Milliseconds())
	v.SetDefault("enable_parallel_processing", def.EnableParallelProcessing)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("memory_limit_mb", def.MemoryLimitMB)
	v.SetDefault("enable_progress_tracking", def.EnableProgressTracking)
	v.SetDefault("enable_intra_batch_deduplication", def.EnableIntraBatchDeduplication)
	v.SetDefault("concurrency_limit", def.ConcurrencyLimit)

	if statErr := readOptional(v, path); statErr != nil {
		return BatchConfig{}, statErr
	}

	cfg := def
	cfg.MaxRetries = v.GetInt("max_retries")
	cfg.InitialBackoff = time.Duration(v.GetInt64("initial_backoff_ms")) * time.Millisecond
	cfg.MaxBackoff = time.Duration(v.GetInt64("max_backoff_ms")) * time.Millisecond
	cfg.EnableParallelProcessing = v.GetBool("enable_parallel_processing")
	cfg.ChunkSize = v.GetInt("chunk_size")
	cfg.MemoryLimitMB = v.GetFloat64("memory_limit_mb")
	cfg.EnableProgressTracking = v.GetBool("enable_progress_tracking")
	cfg.EnableIntraBatchDeduplication = v.GetBool("enable_intra_batch_deduplication")
	cfg.ConcurrencyLimit = v.GetInt("concurrency_limit")

	cfg.ChunkSizeOverrides = map[model.Family]int{}
	for _, f := range model.AllFamilies {
		key := "chunk_size_" + string(f)
		v.SetDefault(key, 0)
		if size := v.GetInt(key); size > 0 {
			cfg.ChunkSizeOverrides[f] = size
		}
	}

	if err := cfg.Validate(); err != nil {
		return BatchConfig{}, err
	}
	return cfg, nil
}

// PerformanceBenchmark renders a human-readable tuning report covering
// parameter usage per family and whether the config passes Validate. It
// preserves the original source's BatchConfig::performance_benchmark
// report (see SPEC_FULL.md "Supplemented features" item 1).
func (c BatchConfig) PerformanceBenchmark() string {
	var b strings.Builder
	b.WriteString("STORY-OPTIMIZATION-001: batch processor tuning report\n")
	b.WriteString("=== OPTIMIZATION SUMMARY ===\n")
	fmt.Fprintf(&b, "max_retries=%d initial_backoff=%s max_backoff=%s parallel=%v\n",
		c.MaxRetries, c.InitialBackoff, c.MaxBackoff, c.EnableParallelProcessing)
	b.WriteString("=== POSTGRESQL PARAMETER USAGE ===\n")
	for _, f := range model.AllFamilies {
		size := c.EffectiveChunkSize(f)
		cols := model.Columns[f]
		fmt.Fprintf(&b, "%-20s chunk_size=%-6d columns=%-3d params/chunk=%-8d of %d safe limit\n",
			f, size, cols, size*cols, chunkbudget.SafeParamLimit)
	}
	b.WriteString("=== VALIDATION RESULTS ===\n")
	if err := c.Validate(); err != nil {
		fmt.Fprintf(&b, "INVALID: %v\n", err)
	} else {
		b.WriteString("all families within the safe parameter budget\n")
	}
	return b.String()
}

func readOptional(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if strings.Contains(err.Error(), "no such file") {
			return nil
		}
		return fmt.Errorf("read batch config: %w", err)
	}
	return nil
}
