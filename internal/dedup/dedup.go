// Copyright 2025 James Ross

// Package dedup collapses records sharing a family's natural key within a
// single payload, keeping the first occurrence in arrival order. It runs
// before validation so validation cost is paid at most once per unique
// key (spec: intra-payload deduplication precedes validation).
package dedup

import (
	"time"

	"github.com/self-sensored/batch-ingest/internal/model"
)

// FamilyStats reports the duplicate count for a single family.
type FamilyStats struct {
	Family     model.Family
	Duplicates int
}

// Stats summarizes a deduplication pass across every family.
type Stats struct {
	PerFamily         []FamilyStats
	TotalDuplicates   int
	DeduplicationTime time.Duration
}

func dedupSlice[T model.Keyed](records []T) ([]T, int) {
	if len(records) == 0 {
		return records, 0
	}
	seen := make(map[any]struct{}, len(records))
	kept := make([]T, 0, len(records))
	duplicates := 0
	for _, r := range records {
		key := r.NaturalKey()
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	return kept, duplicates
}

// Payload deduplicates every family in payload in place, returning
// aggregate statistics. When enabled is false, the payload is returned
// unchanged and all duplicate counts are zero (the orchestrator still
// reports a Stats value with a measured, near-zero DeduplicationTime).
func Payload(payload *model.IngestPayload, enabled bool) Stats {
	start := time.Now()
	stats := Stats{PerFamily: make([]FamilyStats, 0, len(model.AllFamilies))}

	if !enabled {
		for _, f := range model.AllFamilies {
			stats.PerFamily = append(stats.PerFamily, FamilyStats{Family: f, Duplicates: 0})
		}
		stats.DeduplicationTime = time.Since(start)
		return stats
	}

	var dup int

	payload.HeartRate, dup = dedupSlice(payload.HeartRate)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.HeartRate, dup})
	stats.TotalDuplicates += dup

	payload.BloodPressure, dup = dedupSlice(payload.BloodPressure)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.BloodPressure, dup})
	stats.TotalDuplicates += dup

	payload.Sleep, dup = dedupSlice(payload.Sleep)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.Sleep, dup})
	stats.TotalDuplicates += dup

	payload.Activity, dup = dedupSlice(payload.Activity)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.Activity, dup})
	stats.TotalDuplicates += dup

	payload.Workouts, dup = dedupSlice(payload.Workouts)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.Workout, dup})
	stats.TotalDuplicates += dup

	payload.Temperature, dup = dedupSlice(payload.Temperature)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.Temperature, dup})
	stats.TotalDuplicates += dup

	payload.ReproductiveHealth, dup = dedupSlice(payload.ReproductiveHealth)
	stats.PerFamily = append(stats.PerFamily, FamilyStats{model.ReproductiveHealth, dup})
	stats.TotalDuplicates += dup

	stats.DeduplicationTime = time.Since(start)
	return stats
}

// ByFamily returns the duplicate count recorded for f, or 0 if f is not
// present in the stats (should not happen for a Stats produced by Payload).
func (s Stats) ByFamily(f model.Family) int {
	for _, fs := range s.PerFamily {
		if fs.Family == f {
			return fs.Duplicates
		}
	}
	return 0
}
