// Copyright 2025 James Ross
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_records_processed_total",
		Help: "Total number of records successfully persisted, by family",
	}, []string{"family"})
	RecordsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_records_failed_total",
		Help: "Total number of records that failed validation or exhausted retries, by family",
	}, []string{"family"})
	RecordsDuplicate = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_records_duplicate_total",
		Help: "Total number of records dropped as intra-payload duplicates, by family",
	}, []string{"family"})
	ChunkAttempts = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "batch_chunk_attempts",
		Help:    "Number of attempts a chunk required before success or final failure",
		Buckets: []float64{1, 2, 3, 4, 5, 10},
	}, []string{"family"})
	ChunkDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "batch_chunk_duration_seconds",
		Help:    "Wall-clock time to insert one chunk, including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"family"})
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "batch_process_duration_seconds",
		Help:    "Wall-clock time for a full process_batch call",
		Buckets: prometheus.DefBuckets,
	})
	MemoryPeakMB = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "batch_memory_peak_mb",
		Help: "Peak sampled memory usage observed during the most recent batch",
	})
)

func init() {
	prometheus.MustRegister(
		RecordsProcessed, RecordsFailed, RecordsDuplicate,
		ChunkAttempts, ChunkDuration, BatchDuration, MemoryPeakMB,
	)
}
