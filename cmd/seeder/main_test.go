package main

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/mauv0809/rating-ledger/internal/database"
	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/mauv0809/rating-ledger/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	ctx := context.Background()
	l := ledger.New(db)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	inserted, conflicts, err := seed(ctx, l, 3, 5, base, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)
	assert.Zero(t, conflicts)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM matches WHERE host_won IS NOT NULL").Scan(&count))
	assert.Equal(t, 5, count)

	t.Run("every rating chain is consistent", func(t *testing.T) {
		reports := report.New(db)
		for _, id := range []string{"S1", "S2", "S3"} {
			p, err := l.GetPlayer(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, seedRegion, p.Region)

			h, err := reports.History(ctx, id)
			require.NoError(t, err)
			for _, row := range h.Rows {
				assert.False(t, row.Inconsistent, "player %s match %d", id, row.MatchID)
			}
		}
	})

	t.Run("reseeding keeps players and continues their ratings", func(t *testing.T) {
		inserted, _, err := seed(ctx, l, 3, 2, base.Add(24*time.Hour), rand.New(rand.NewSource(2)))
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		reports := report.New(db)
		for _, id := range []string{"S1", "S2", "S3"} {
			h, err := reports.History(ctx, id)
			require.NoError(t, err)
			for _, row := range h.Rows {
				assert.False(t, row.Inconsistent, "player %s match %d", id, row.MatchID)
			}
		}
	})

	t.Run("needs two players", func(t *testing.T) {
		_, _, err := seed(ctx, l, 1, 1, base, rand.New(rand.NewSource(3)))
		assert.Error(t, err)
	})
}
