// Copyright 2025 James Ross

// Package batch implements the top-level batch orchestrator: it runs
// deduplication, validation, and family dispatch, then aggregates the
// results into a single BatchResult.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/self-sensored/batch-ingest/internal/config"
	"github.com/self-sensored/batch-ingest/internal/dedup"
	"github.com/self-sensored/batch-ingest/internal/executor"
	"github.com/self-sensored/batch-ingest/internal/memtrack"
	"github.com/self-sensored/batch-ingest/internal/model"
	"github.com/self-sensored/batch-ingest/internal/obs"
	"github.com/self-sensored/batch-ingest/internal/progress"
	"github.com/self-sensored/batch-ingest/internal/storage"
	"github.com/self-sensored/batch-ingest/internal/validate"
)

// Processor is a reusable entry point for process_batch. Construct with
// New or NewWithConfig; construction validates the config and fails fast
// on a bad one, since ConfigurationError can never occur mid-batch.
type Processor struct {
	store     storage.Store
	batchCfg  config.BatchConfig
	valCfg    config.ValidationConfig
	log       *zap.Logger
	exec      *executor.Executor

	mu        sync.Mutex
	processed int64
	failed    int64
}

// New constructs a Processor with default BatchConfig and ValidationConfig.
func New(store storage.Store, log *zap.Logger) (*Processor, error) {
	return NewWithConfig(store, config.DefaultBatchConfig(), config.DefaultValidationConfig(), log)
}

// NewWithConfig constructs a Processor with explicit configuration.
// Construction fails if either config is invalid.
func NewWithConfig(store storage.Store, batchCfg config.BatchConfig, valCfg config.ValidationConfig, log *zap.Logger) (*Processor, error) {
	if err := batchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("batch processor: %w", err)
	}
	if err := valCfg.Validate(); err != nil {
		return nil, fmt.Errorf("batch processor: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	execCfg := executor.Config{
		MaxRetries:     batchCfg.MaxRetries,
		InitialBackoff: batchCfg.InitialBackoff,
		MaxBackoff:     batchCfg.MaxBackoff,
	}

	return &Processor{
		store:    store,
		batchCfg: batchCfg,
		valCfg:   valCfg,
		log:      log,
		exec:     executor.New(store, execCfg),
	}, nil
}

// ResetCounters zeroes the processor's cumulative processed/failed
// counters. Counters exposed for observability can be reset between
// batches; it has no effect on a batch already in flight.
func (p *Processor) ResetCounters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = 0
	p.failed = 0
}

// Counters returns the cumulative processed/failed totals observed since
// construction or the last ResetCounters call.
func (p *Processor) Counters() (processed, failed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.failed
}

// ProcessBatch runs dedup, validation, and per-family dispatch over
// payload, returning the aggregated BatchResult. If ctx is cancelled,
// in-flight chunks complete (to preserve chunk atomicity); no new chunks
// are scheduled, and the returned BatchResult reflects only chunks whose
// outcome is known.
func (p *Processor) ProcessBatch(ctx context.Context, userID uuid.UUID, payload *model.IngestPayload) BatchResult {
	start := time.Now()
	result := BatchResult{}

	dedupStats := dedup.Payload(payload, p.batchCfg.EnableIntraBatchDeduplication)
	result.DeduplicationStats = dedupStats
	for _, fs := range dedupStats.PerFamily {
		obs.RecordsDuplicate.WithLabelValues(string(fs.Family)).Add(float64(fs.Duplicates))
	}

	outcome := validate.Payload(payload, p.valCfg, time.Now())
	for _, ve := range outcome.Errors {
		result.FailedCount++
		obs.RecordsFailed.WithLabelValues(string(ve.Family)).Inc()
		result.Errors = append(result.Errors, RecordedError{
			Family:  ve.Family,
			Attempt: 1,
			Message: ve.Err.Error(),
		})
	}

	jobs := p.buildJobs(&outcome.Valid)

	var tracker *progress.Tracker
	if p.batchCfg.EnableProgressTracking {
		var total int64
		for _, j := range jobs {
			total += int64(j.ChunkCount())
		}
		tracker = progress.New(total)
	}

	sampler := memtrack.New()
	sampler.Start()

	sem := p.semaphore(len(jobs))

	if p.batchCfg.EnableParallelProcessing {
		p.runParallel(ctx, jobs, sem, tracker, &result)
	} else {
		p.runSequential(ctx, jobs, sem, tracker, &result)
	}

	peak := sampler.Stop()
	if peak > p.batchCfg.MemoryLimitMB {
		p.log.Warn("batch exceeded soft memory limit",
			zap.Float64("peak_mb", peak),
			zap.Float64("limit_mb", p.batchCfg.MemoryLimitMB))
	}
	result.MemoryPeakMB = &peak
	obs.MemoryPeakMB.Set(peak)

	if tracker != nil {
		snap := tracker.Snapshot()
		result.ChunkProgress = &snap
	}

	if ctx.Err() != nil {
		result.Cancelled = true
	}

	result.ProcessingTime = time.Since(start)
	obs.BatchDuration.Observe(result.ProcessingTime.Seconds())

	p.mu.Lock()
	p.processed += int64(result.ProcessedCount)
	p.failed += int64(result.FailedCount)
	p.mu.Unlock()

	return result
}

func (p *Processor) buildJobs(payload *model.IngestPayload) []FamilyJob {
	var jobs []FamilyJob
	if len(payload.HeartRate) > 0 {
		jobs = append(jobs, newFamilyJob(model.HeartRate, payload.HeartRate, p.batchCfg.EffectiveChunkSize(model.HeartRate)))
	}
	if len(payload.BloodPressure) > 0 {
		jobs = append(jobs, newFamilyJob(model.BloodPressure, payload.BloodPressure, p.batchCfg.EffectiveChunkSize(model.BloodPressure)))
	}
	if len(payload.Sleep) > 0 {
		jobs = append(jobs, newFamilyJob(model.Sleep, payload.Sleep, p.batchCfg.EffectiveChunkSize(model.Sleep)))
	}
	if len(payload.Activity) > 0 {
		jobs = append(jobs, newFamilyJob(model.Activity, payload.Activity, p.batchCfg.EffectiveChunkSize(model.Activity)))
	}
	if len(payload.Workouts) > 0 {
		jobs = append(jobs, newFamilyJob(model.Workout, payload.Workouts, p.batchCfg.EffectiveChunkSize(model.Workout)))
	}
	if len(payload.Temperature) > 0 {
		jobs = append(jobs, newFamilyJob(model.Temperature, payload.Temperature, p.batchCfg.EffectiveChunkSize(model.Temperature)))
	}
	if len(payload.ReproductiveHealth) > 0 {
		jobs = append(jobs, newFamilyJob(model.ReproductiveHealth, payload.ReproductiveHealth, p.batchCfg.EffectiveChunkSize(model.ReproductiveHealth)))
	}
	return jobs
}

// semaphore sizes the concurrency gate per spec §4.6: min(enabled
// families, cpu_count*2), overridable by ConcurrencyLimit.
func (p *Processor) semaphore(enabledFamilies int) chan struct{} {
	if p.batchCfg.ConcurrencyLimit > 0 {
		return make(chan struct{}, p.batchCfg.ConcurrencyLimit)
	}
	limit := runtime.NumCPU() * 2
	if enabledFamilies > 0 && enabledFamilies < limit {
		limit = enabledFamilies
	}
	if limit <= 0 {
		limit = 1
	}
	return make(chan struct{}, limit)
}

func (p *Processor) runParallel(ctx context.Context, jobs []FamilyJob, sem chan struct{}, tracker *progress.Tracker, result *BatchResult) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(len(jobs))
	for _, job := range jobs {
		job := job
		go func() {
			defer wg.Done()
			outcome := job.Run(ctx, p.exec, sem, tracker)
			obs.RecordsProcessed.WithLabelValues(string(outcome.Family)).Add(float64(outcome.Processed))
			obs.RecordsFailed.WithLabelValues(string(outcome.Family)).Add(float64(outcome.Failed))
			mu.Lock()
			result.ProcessedCount += outcome.Processed
			result.FailedCount += outcome.Failed
			result.recordChunkErrors(outcome.Errors)
			mu.Unlock()
		}()
	}
	wg.Wait()
}

func (p *Processor) runSequential(ctx context.Context, jobs []FamilyJob, sem chan struct{}, tracker *progress.Tracker, result *BatchResult) {
	byFamily := make(map[model.Family]FamilyJob, len(jobs))
	for _, j := range jobs {
		byFamily[j.Family()] = j
	}
	for _, f := range model.AllFamilies {
		job, ok := byFamily[f]
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		outcome := job.Run(ctx, p.exec, sem, tracker)
		obs.RecordsProcessed.WithLabelValues(string(outcome.Family)).Add(float64(outcome.Processed))
		obs.RecordsFailed.WithLabelValues(string(outcome.Family)).Add(float64(outcome.Failed))
		result.ProcessedCount += outcome.Processed
		result.FailedCount += outcome.Failed
		result.recordChunkErrors(outcome.Errors)
	}
}
