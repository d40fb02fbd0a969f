package metrics

import (
	"context"
	"testing"

	"github.com/mauv0809/rating-ledger/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (MetricsStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return New(db), teardown
}

func TestIncrementAndGetAll(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	// 1. Initially, there should be no metrics
	metrics, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, metrics)

	// 2. Increment a new key
	store.Increment(ctx, KeyLinesProcessed)
	metrics, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"lines_processed": 1}, metrics)

	// 3. Increment the same key again
	store.Increment(ctx, KeyLinesProcessed)
	metrics, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"lines_processed": 2}, metrics)

	// 4. Increment a different key
	store.Increment(ctx, TagKey("m"))
	metrics, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"lines_processed": 2,
		"tag_m":           1,
	}, metrics)
}
