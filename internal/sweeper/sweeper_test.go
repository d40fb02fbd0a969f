package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/rating-ledger/internal/database"
	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/notifier"
	"github.com/mauv0809/rating-ledger/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) (ledger.Ledger, report.Reports, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	l := ledger.New(db)
	for _, id := range []string{"A1", "B1"} {
		require.NoError(t, l.CreatePlayer(context.Background(), ledger.Player{
			ID: id, Name: "Player" + id, Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Rating: 1000, Region: "NY",
		}))
	}
	return l, report.New(db), teardown
}

func TestSweep(t *testing.T) {
	l, reports, teardown := setupTest(t)
	defer teardown()
	ctx := context.Background()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	oldID, err := l.ScheduleMatch(ctx, "A1", "B1", now.Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = l.ScheduleMatch(ctx, "A1", "B1", now.Add(-time.Hour))
	require.NoError(t, err)

	m := metrics.NewMock()
	n := notifier.NewMock()
	s := New(reports, m, n, 24*time.Hour, false)
	s.now = func() time.Time { return now }

	count, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, m.StaleScheduled())

	reminders := n.StaleReminders()
	require.Len(t, reminders, 1)
	require.Len(t, reminders[0], 1)
	assert.Equal(t, oldID, reminders[0][0].MatchID)

	t.Run("already reminded matches are not repeated", func(t *testing.T) {
		count, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Len(t, n.StaleReminders(), 1)
	})

	t.Run("completed matches are no longer stale", func(t *testing.T) {
		_, err := l.CompleteScheduled(ctx, ledger.Completion{
			HostID: "A1", GuestID: "B1",
			Start: now.Add(-48 * time.Hour), End: now.Add(-47 * time.Hour),
			HostWon: true, PreRatingHost: 1000, PostRatingHost: 1010, PreRatingGuest: 1000, PostRatingGuest: 990,
		})
		require.NoError(t, err)

		count, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Equal(t, 0, m.StaleScheduled())
	})
}

func TestStartRunsImmediately(t *testing.T) {
	l, reports, teardown := setupTest(t)
	defer teardown()

	_, err := l.ScheduleMatch(context.Background(), "A1", "B1", time.Now().Add(-72*time.Hour))
	require.NoError(t, err)

	m := metrics.NewMock()
	s := New(reports, m, nil, 24*time.Hour, false)
	require.NoError(t, s.Start(time.Hour))
	defer s.Stop()

	assert.Eventually(t, func() bool { return m.StaleScheduled() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSweepPagesLongReminders(t *testing.T) {
	l, reports, teardown := setupTest(t)
	defer teardown()
	ctx := context.Background()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	total := notifier.MaxStaleMatches + 5
	for i := 0; i < total; i++ {
		_, err := l.ScheduleMatch(ctx, "A1", "B1", now.Add(-48*time.Hour-time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	n := notifier.NewMock()
	s := New(reports, metrics.NewMock(), n, 24*time.Hour, false)
	s.now = func() time.Time { return now }

	count, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, total, count)

	reminders := n.StaleReminders()
	require.Len(t, reminders, 2)
	assert.Len(t, reminders[0], notifier.MaxStaleMatches)
	assert.Len(t, reminders[1], 5)

	named := make(map[int64]bool)
	for _, page := range reminders {
		for _, m := range page {
			named[m.MatchID] = true
		}
	}
	assert.Len(t, named, total, "every stale match must be named in a reminder")

	_, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Len(t, n.StaleReminders(), 2, "named matches are not repeated")
}
