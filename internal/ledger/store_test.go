package ledger_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/rating-ledger/internal/database"
	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (ledger.Ledger, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return ledger.New(db), db, teardown
}

func ts(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func addPlayer(t *testing.T, l ledger.Ledger, id, name string, rating int) {
	t.Helper()
	err := l.CreatePlayer(context.Background(), ledger.Player{
		ID:        id,
		Name:      name,
		Birthdate: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Rating:    rating,
		Region:    "NY",
	})
	require.NoError(t, err)
}

func completion(host, guest string, start, end time.Time, hostWon bool, preHost, postHost, preGuest, postGuest int) ledger.Completion {
	return ledger.Completion{
		HostID:          host,
		GuestID:         guest,
		Start:           start,
		End:             end,
		HostWon:         hostWon,
		PreRatingHost:   preHost,
		PostRatingHost:  postHost,
		PreRatingGuest:  preGuest,
		PostRatingGuest: postGuest,
	}
}

func rating(t *testing.T, l ledger.Ledger, id string) int {
	t.Helper()
	p, err := l.GetPlayer(context.Background(), id)
	require.NoError(t, err)
	return p.Rating
}

func countMatches(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&n))
	return n
}

func TestCreatePlayer(t *testing.T) {
	l, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)

	t.Run("lookup returns the stored player", func(t *testing.T) {
		p, err := l.GetPlayer(ctx, "A1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", p.Name)
		assert.Equal(t, 1000, p.Rating)
		assert.Equal(t, "NY", p.Region)
		assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), p.Birthdate)

		exists, err := l.PlayerExists(ctx, "A1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown player is not found", func(t *testing.T) {
		_, err := l.GetPlayer(ctx, "ZZ")
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		exists, err := l.PlayerExists(ctx, "ZZ")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	tests := []struct {
		name    string
		player  ledger.Player
		wantErr error
	}{
		{"duplicate id", ledger.Player{ID: "A1", Name: "Other", Birthdate: time.Now(), Region: "CA"}, ledger.ErrConflict},
		{"duplicate name", ledger.Player{ID: "B1", Name: "Alice", Birthdate: time.Now(), Region: "CA"}, ledger.ErrConflict},
		{"empty id", ledger.Player{ID: "", Name: "Bob", Birthdate: time.Now(), Region: "CA"}, ledger.ErrValidation},
		{"id too long", ledger.Player{ID: "ABCDEFG", Name: "Bob", Birthdate: time.Now(), Region: "CA"}, ledger.ErrValidation},
		{"empty name", ledger.Player{ID: "B1", Name: "", Birthdate: time.Now(), Region: "CA"}, ledger.ErrValidation},
		{"missing birthdate", ledger.Player{ID: "B1", Name: "Bob", Region: "CA"}, ledger.ErrValidation},
		{"region too long", ledger.Player{ID: "B1", Name: "Bob", Birthdate: time.Now(), Region: "CAL"}, ledger.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.CreatePlayer(ctx, tt.player)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("empty region is allowed", func(t *testing.T) {
		require.NoError(t, l.CreatePlayer(ctx, ledger.Player{ID: "E1", Name: "Eve", Birthdate: time.Now(), Region: ""}))
		p, err := l.GetPlayer(ctx, "E1")
		require.NoError(t, err)
		assert.Empty(t, p.Region)
	})

	t.Run("failed creates leave no rows behind", func(t *testing.T) {
		exists, err := l.PlayerExists(ctx, "B1")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestScheduleThenComplete(t *testing.T) {
	l, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)
	addPlayer(t, l, "B1", "Bob", 1000)

	start := ts(1, 10, 0)
	matchID, err := l.ScheduleMatch(ctx, "A1", "B1", start)
	require.NoError(t, err)

	_, err = l.ScheduleMatch(ctx, "A1", "B1", start)
	assert.ErrorIs(t, err, ledger.ErrConflict, "a second match at the same start must conflict")

	completedID, err := l.CompleteScheduled(ctx, completion("A1", "B1", start, ts(1, 11, 0), true, 1000, 1020, 1000, 980))
	require.NoError(t, err)
	assert.Equal(t, matchID, completedID, "completion must transition the scheduled row")

	assert.Equal(t, 1020, rating(t, l, "A1"))
	assert.Equal(t, 980, rating(t, l, "B1"))
	assert.Equal(t, 1, countMatches(t, db), "no duplicate row may be created")

	m, err := l.GetMatch(ctx, matchID)
	require.NoError(t, err)
	require.True(t, m.Completed())
	assert.True(t, *m.HostWon)
	assert.Equal(t, ts(1, 11, 0), *m.End)
	assert.Equal(t, 980, *m.PostRatingGuest)

	t.Run("completed match cannot be completed again through its key", func(t *testing.T) {
		_, err := l.CompleteScheduled(ctx, completion("A1", "B1", start, ts(1, 11, 0), false, 1000, 990, 1000, 1010))
		assert.ErrorIs(t, err, ledger.ErrNotFound)
		assert.Equal(t, 1020, rating(t, l, "A1"))
	})
}

func TestScheduleMatch_Failures(t *testing.T) {
	l, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)
	addPlayer(t, l, "B1", "Bob", 1000)
	addPlayer(t, l, "C1", "Carol", 1000)

	_, err := l.CompleteMatch(ctx, completion("A1", "B1", ts(1, 10, 0), ts(1, 11, 0), true, 1000, 1010, 1000, 990))
	require.NoError(t, err)

	tests := []struct {
		name    string
		host    string
		guest   string
		start   time.Time
		wantErr error
	}{
		{"host equals guest", "A1", "A1", ts(2, 10, 0), ledger.ErrConflict},
		{"unknown host", "ZZ", "B1", ts(2, 10, 0), ledger.ErrNotFound},
		{"unknown guest", "A1", "ZZ", ts(2, 10, 0), ledger.ErrNotFound},
		{"empty host", "", "B1", ts(2, 10, 0), ledger.ErrValidation},
		{"start inside completed match of host", "A1", "C1", ts(1, 10, 30), ledger.ErrConflict},
		{"start inside completed match of guest", "C1", "B1", ts(1, 10, 0), ledger.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ScheduleMatch(ctx, tt.host, tt.guest, tt.start)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 1, countMatches(t, db))

	t.Run("start at completed end is free", func(t *testing.T) {
		_, err := l.ScheduleMatch(ctx, "A1", "C1", ts(1, 11, 0))
		assert.NoError(t, err)
	})
}

func TestCompleteMatch_DirectInsertConflicts(t *testing.T) {
	l, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)
	addPlayer(t, l, "B1", "Bob", 1000)
	addPlayer(t, l, "C1", "Carol", 1000)

	_, err := l.CompleteMatch(ctx, completion("A1", "B1", ts(1, 10, 0), ts(1, 11, 0), true, 1000, 1020, 1000, 980))
	require.NoError(t, err)

	_, err = l.CompleteMatch(ctx, completion("A1", "C1", ts(1, 10, 30), ts(1, 10, 45), true, 1020, 1030, 1000, 990))
	assert.ErrorIs(t, err, ledger.ErrConflict)

	assert.Equal(t, 1020, rating(t, l, "A1"), "failed completion must not touch ratings")
	assert.Equal(t, 1000, rating(t, l, "C1"))
	assert.Equal(t, 1, countMatches(t, db))

	t.Run("completed match overlapping a scheduled start fails", func(t *testing.T) {
		_, err := l.ScheduleMatch(ctx, "B1", "C1", ts(2, 10, 30))
		require.NoError(t, err)

		_, err = l.CompleteMatch(ctx, completion("C1", "A1", ts(2, 10, 0), ts(2, 11, 0), true, 1000, 1010, 1020, 1010))
		assert.ErrorIs(t, err, ledger.ErrConflict)
	})

	t.Run("end before start fails", func(t *testing.T) {
		_, err := l.CompleteMatch(ctx, completion("A1", "C1", ts(3, 11, 0), ts(3, 10, 0), true, 1020, 1030, 1000, 990))
		assert.ErrorIs(t, err, ledger.ErrConflict)
	})

	t.Run("unknown player fails", func(t *testing.T) {
		_, err := l.CompleteMatch(ctx, completion("A1", "ZZ", ts(3, 10, 0), ts(3, 11, 0), true, 1020, 1030, 1000, 990))
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("zero length match is accepted", func(t *testing.T) {
		_, err := l.CompleteMatch(ctx, completion("A1", "C1", ts(4, 10, 0), ts(4, 10, 0), false, 1020, 1015, 1000, 1005))
		require.NoError(t, err)
		assert.Equal(t, 1015, rating(t, l, "A1"))
	})
}

func TestCompleteMatch_Correction(t *testing.T) {
	l, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)
	addPlayer(t, l, "B1", "Bob", 1000)
	addPlayer(t, l, "C1", "Carol", 1000)

	matchID, err := l.CompleteMatch(ctx, completion("A1", "B1", ts(1, 10, 0), ts(1, 11, 0), true, 1000, 1020, 1000, 980))
	require.NoError(t, err)

	t.Run("re-submitting with the match id overwrites in place", func(t *testing.T) {
		c := completion("A1", "B1", ts(1, 10, 0), ts(1, 11, 30), false, 1000, 985, 1000, 1015)
		c.MatchID = &matchID

		id, err := l.CompleteMatch(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, matchID, id)
		assert.Equal(t, 1, countMatches(t, db))
		assert.Equal(t, 985, rating(t, l, "A1"))
		assert.Equal(t, 1015, rating(t, l, "B1"))
	})

	t.Run("correction cannot change participants", func(t *testing.T) {
		c := completion("A1", "C1", ts(1, 10, 0), ts(1, 11, 0), true, 1000, 1020, 1000, 980)
		c.MatchID = &matchID
		_, err := l.CompleteMatch(ctx, c)
		assert.ErrorIs(t, err, ledger.ErrConflict)
	})

	t.Run("correction of an unknown match id fails", func(t *testing.T) {
		missing := int64(999)
		c := completion("A1", "B1", ts(1, 10, 0), ts(1, 11, 0), true, 1000, 1020, 1000, 980)
		c.MatchID = &missing
		_, err := l.CompleteMatch(ctx, c)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("correction still checks other matches", func(t *testing.T) {
		_, err := l.CompleteMatch(ctx, completion("A1", "C1", ts(1, 12, 0), ts(1, 13, 0), true, 985, 995, 1000, 990))
		require.NoError(t, err)

		c := completion("A1", "B1", ts(1, 10, 0), ts(1, 12, 30), true, 1000, 1020, 1000, 980)
		c.MatchID = &matchID
		_, err = l.CompleteMatch(ctx, c)
		assert.ErrorIs(t, err, ledger.ErrConflict)
	})
}

func TestRatingFollowsLatestCompletedMatch(t *testing.T) {
	l, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)
	addPlayer(t, l, "B1", "Bob", 1000)

	_, err := l.CompleteMatch(ctx, completion("A1", "B1", ts(5, 10, 0), ts(5, 11, 0), true, 1010, 1030, 990, 970))
	require.NoError(t, err)

	// An older match recorded later must not roll the rating back.
	_, err = l.CompleteMatch(ctx, completion("A1", "B1", ts(1, 10, 0), ts(1, 11, 0), true, 1000, 1010, 1000, 990))
	require.NoError(t, err)

	assert.Equal(t, 1030, rating(t, l, "A1"))
	assert.Equal(t, 970, rating(t, l, "B1"))
}

func TestHasConflict(t *testing.T) {
	l, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	addPlayer(t, l, "A1", "Alice", 1000)
	addPlayer(t, l, "B1", "Bob", 1000)

	scheduledID, err := l.ScheduleMatch(ctx, "A1", "B1", ts(1, 10, 0))
	require.NoError(t, err)

	conflict, err := l.HasConflict(ctx, "B1", ledger.Point(ts(1, 10, 0)), nil)
	require.NoError(t, err)
	assert.True(t, conflict, "guest role counts too")

	conflict, err = l.HasConflict(ctx, "B1", ledger.Point(ts(1, 10, 0)), &scheduledID)
	require.NoError(t, err)
	assert.False(t, conflict, "excluded match is ignored")

	conflict, err = l.HasConflict(ctx, "A1", ledger.Span(ts(1, 9, 0), ts(1, 10, 0)), nil)
	require.NoError(t, err)
	assert.False(t, conflict, "span ending at the scheduled start is free")

	conflict, err = l.HasConflict(ctx, "A1", ledger.Span(ts(1, 9, 0), ts(1, 10, 1)), nil)
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestScheduleMatch_ConcurrentSameInstant(t *testing.T) {
	first, db, teardown := setupTestDB(t)
	defer teardown()
	second := ledger.New(db)
	ctx := context.Background()

	addPlayer(t, first, "A1", "Alice", 1000)
	addPlayer(t, first, "B1", "Bob", 1000)
	addPlayer(t, first, "C1", "Carol", 1000)

	start := ts(1, 10, 0)
	const workers = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		errs      []error
	)
	for i := 0; i < workers; i++ {
		l, guest := first, "B1"
		if i%2 == 1 {
			l, guest = second, "C1"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.ScheduleMatch(ctx, "A1", guest, start)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "only one match may claim the instant")
	assert.Equal(t, 1, countMatches(t, db))
	for _, err := range errs {
		assert.ErrorIs(t, err, ledger.ErrConflict)
	}
}
