package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/calorie-tracker-api/internal/store/sqlite"
)

func TestSeedIsIdempotent(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	created, err := seed(ctx, st, commonFoods)
	require.NoError(t, err)
	assert.Len(t, created, len(commonFoods))

	created, err = seed(ctx, st, commonFoods)
	require.NoError(t, err)
	assert.Empty(t, created)

	foods, err := st.SearchFoods(ctx, "apple", 0)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.True(t, foods[0].Verified)
	assert.Equal(t, 52.0, foods[0].CaloriesPer100)
}

func TestCommonFoodsAreValid(t *testing.T) {
	for _, f := range commonFoods {
		assert.NotEmpty(t, f.Name)
		assert.False(t, f.ForQuantity(100).Negative(), f.Name)
		// Energy from macros should be within reach of the stated calories.
		fromMacros := 4*f.ProteinPer100 + 4*f.CarbsPer100 + 9*f.FatPer100
		assert.InDelta(t, f.CaloriesPer100, fromMacros, f.CaloriesPer100*0.25+10, f.Name)
	}
}
