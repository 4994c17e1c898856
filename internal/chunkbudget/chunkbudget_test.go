// Copyright 2025 James Ross
package chunkbudget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/self-sensored/batch-ingest/internal/chunkbudget"
	"github.com/self-sensored/batch-ingest/internal/model"
)

func TestMaxChunkSizeBoundaryAccepted(t *testing.T) {
	for _, f := range model.AllFamilies {
		max := chunkbudget.MaxChunkSize(f)
		err := chunkbudget.Validate(map[model.Family]int{f: max})
		assert.NoError(t, err, "family %s at boundary %d", f, max)
	}
}

func TestChunkSizeOneOverBoundaryRejected(t *testing.T) {
	for _, f := range model.AllFamilies {
		max := chunkbudget.MaxChunkSize(f)
		err := chunkbudget.Validate(map[model.Family]int{f: max + 1})
		require.Error(t, err)
		var budgetErr *chunkbudget.OutOfBudgetError
		assert.ErrorAs(t, err, &budgetErr)
		assert.Equal(t, f, budgetErr.Family)
	}
}

func TestMaxChunkSizeDerivedFromColumns(t *testing.T) {
	got := chunkbudget.MaxChunkSize(model.HeartRate)
	want := chunkbudget.SafeParamLimit / model.Columns[model.HeartRate]
	assert.Equal(t, want, got)
}

func TestValidateIgnoresZeroOrMissingSizes(t *testing.T) {
	err := chunkbudget.Validate(map[model.Family]int{model.HeartRate: 0})
	assert.NoError(t, err)
	err = chunkbudget.Validate(map[model.Family]int{})
	assert.NoError(t, err)
}
