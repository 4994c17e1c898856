// Copyright 2025 James Ross

// Package chunkbudget derives and validates per-family chunk sizes against
// the database's bind-parameter ceiling. Chunk sizes are computed from a
// single budget, never hand-picked, so a schema change that adds a column
// to one family automatically tightens every chunk size downstream.
package chunkbudget

import (
	"strconv"

	"github.com/self-sensored/batch-ingest/internal/model"
)

const (
	// MaxParams is the backing store's hard bind-parameter ceiling per
	// statement.
	MaxParams = 65_535

	// SafeParamLimit leaves headroom for ancillary bind positions (roughly
	// 80% of MaxParams).
	SafeParamLimit = 52_428
)

// MaxChunkSize returns the largest chunk size for family f that keeps
// chunk_size * columns(f) within SafeParamLimit.
func MaxChunkSize(f model.Family) int {
	cols := model.Columns[f]
	if cols <= 0 {
		return 0
	}
	return SafeParamLimit / cols
}

// OutOfBudgetError reports a requested chunk size that would overflow the
// parameter budget for a family.
type OutOfBudgetError struct {
	Family    model.Family
	Requested int
	Maximum   int
}

func (e *OutOfBudgetError) Error() string {
	return "chunk size " + strconv.Itoa(e.Requested) + " for family " + string(e.Family) +
		" exceeds the safe parameter budget (maximum " + strconv.Itoa(e.Maximum) + ")"
}

// Validate checks a proposed set of per-family chunk sizes against the
// parameter budget. Boundary sizes exactly at the ceiling are accepted;
// exceeding by one is rejected.
func Validate(sizes map[model.Family]int) error {
	for _, f := range model.AllFamilies {
		size, ok := sizes[f]
		if !ok || size <= 0 {
			continue
		}
		cols := model.Columns[f]
		if size*cols > SafeParamLimit {
			return &OutOfBudgetError{Family: f, Requested: size, Maximum: MaxChunkSize(f)}
		}
	}
	return nil
}
