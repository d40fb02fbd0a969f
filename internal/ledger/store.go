package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new Ledger backed by db.
func New(db *sql.DB) Ledger {
	return &store{
		db: db,
	}
}

// ScheduleMatch inserts a match without an outcome. The start instant must not
// fall inside any match of either player.
func (s *store) ScheduleMatch(ctx context.Context, hostID, guestID string, start time.Time) (int64, error) {
	if err := validateParticipants(hostID, guestID); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := requirePlayers(ctx, tx, hostID, guestID); err != nil {
		return 0, err
	}
	if err := checkConflicts(ctx, tx, Point(start), nil, hostID, guestID); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO matches (host_id, guest_id, start_time) VALUES (?, ?, ?)",
		hostID, guestID, start.Unix(),
	)
	if err != nil {
		return 0, storeError("insert scheduled match", err)
	}
	matchID, err := res.LastInsertId()
	if err != nil {
		return 0, storeError("read match id", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storeError("commit scheduled match", err)
	}

	log.Info("Scheduled match", "matchID", matchID, "host", hostID, "guest", guestID, "start", start)
	return matchID, nil
}

func (s *store) CompleteMatch(ctx context.Context, c Completion) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeError("begin transaction", err)
	}
	defer tx.Rollback()

	matchID, err := complete(ctx, tx, c)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, storeError("commit completed match", err)
	}

	log.Info("Completed match", "matchID", matchID, "host", c.HostID, "guest", c.GuestID, "hostWon", c.HostWon, "correction", c.MatchID != nil)
	return matchID, nil
}

// CompleteScheduled locates the scheduled match for (host, guest, start) that
// has no outcome yet and completes it in place.
func (s *store) CompleteScheduled(ctx context.Context, c Completion) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeError("begin transaction", err)
	}
	defer tx.Rollback()

	var matchID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM matches
		WHERE host_id = ? AND guest_id = ? AND start_time = ? AND host_won IS NULL
	`, c.HostID, c.GuestID, c.Start.Unix()).Scan(&matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFoundError("start", "no scheduled match for %s vs %s at %s", c.HostID, c.GuestID, c.Start.Format(time.DateTime))
	}
	if err != nil {
		return 0, storeError("look up scheduled match", err)
	}

	c.MatchID = &matchID
	if _, err := complete(ctx, tx, c); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, storeError("commit completed match", err)
	}

	log.Info("Completed scheduled match", "matchID", matchID, "host", c.HostID, "guest", c.GuestID, "hostWon", c.HostWon)
	return matchID, nil
}

// complete validates c and writes it, then propagates the ratings. It runs
// inside the caller's transaction.
func complete(ctx context.Context, tx *sql.Tx, c Completion) (int64, error) {
	if err := validateParticipants(c.HostID, c.GuestID); err != nil {
		return 0, err
	}
	if c.End.Before(c.Start) {
		return 0, conflictError("end", "match ends before it starts")
	}
	if err := requirePlayers(ctx, tx, c.HostID, c.GuestID); err != nil {
		return 0, err
	}

	if c.MatchID != nil {
		existing, err := getMatch(ctx, tx, *c.MatchID)
		if err != nil {
			return 0, err
		}
		if existing.HostID != c.HostID || existing.GuestID != c.GuestID || !existing.Start.Equal(c.Start) {
			return 0, conflictError("id", "match %d is %s vs %s at %s", existing.ID, existing.HostID, existing.GuestID, existing.Start.Format(time.DateTime))
		}
	}

	if err := checkConflicts(ctx, tx, Span(c.Start, c.End), c.MatchID, c.HostID, c.GuestID); err != nil {
		return 0, err
	}

	var matchID int64
	if c.MatchID == nil {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO matches (
				host_id, guest_id, start_time, end_time, host_won,
				pre_rating_host, post_rating_host, pre_rating_guest, post_rating_guest
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.HostID, c.GuestID, c.Start.Unix(), c.End.Unix(), c.HostWon,
			c.PreRatingHost, c.PostRatingHost, c.PreRatingGuest, c.PostRatingGuest)
		if err != nil {
			return 0, storeError("insert completed match", err)
		}
		matchID, err = res.LastInsertId()
		if err != nil {
			return 0, storeError("read match id", err)
		}
	} else {
		matchID = *c.MatchID
		_, err := tx.ExecContext(ctx, `
			UPDATE matches
			SET end_time = ?, host_won = ?,
				pre_rating_host = ?, post_rating_host = ?,
				pre_rating_guest = ?, post_rating_guest = ?
			WHERE id = ?
		`, c.End.Unix(), c.HostWon,
			c.PreRatingHost, c.PostRatingHost, c.PreRatingGuest, c.PostRatingGuest, matchID)
		if err != nil {
			return 0, storeError("update match", err)
		}
	}

	if err := applyRatings(ctx, tx, matchID, c.HostID, c.GuestID, c.PostRatingHost, c.PostRatingGuest); err != nil {
		return 0, err
	}
	return matchID, nil
}

func validateParticipants(hostID, guestID string) error {
	if hostID == "" {
		return validationError("host", "host is required")
	}
	if guestID == "" {
		return validationError("guest", "guest is required")
	}
	if hostID == guestID {
		return conflictError("guest", "player %s cannot play against themselves", hostID)
	}
	return nil
}

func (s *store) GetMatch(ctx context.Context, matchID int64) (*Match, error) {
	return getMatch(ctx, s.db, matchID)
}

func getMatch(ctx context.Context, q querier, matchID int64) (*Match, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, host_id, guest_id, start_time, end_time, host_won,
			pre_rating_host, post_rating_host, pre_rating_guest, post_rating_guest
		FROM matches WHERE id = ?
	`, matchID)
	m, err := ScanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError("id", "match %d not found", matchID)
	}
	if err != nil {
		return nil, storeError("get match", err)
	}
	return m, nil
}

// ScanMatch reads a match from a row selecting id, host_id, guest_id,
// start_time, end_time, host_won and the four rating columns, in that order.
func ScanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var (
		m                   Match
		start               int64
		end                 sql.NullInt64
		hostWon             sql.NullBool
		preHost, postHost   sql.NullInt64
		preGuest, postGuest sql.NullInt64
	)
	err := scanner.Scan(&m.ID, &m.HostID, &m.GuestID, &start, &end, &hostWon, &preHost, &postHost, &preGuest, &postGuest)
	if err != nil {
		return nil, err
	}

	m.Start = fromUnix(start)
	if end.Valid {
		e := fromUnix(end.Int64)
		m.End = &e
	}
	if hostWon.Valid {
		m.HostWon = &hostWon.Bool
	}
	m.PreRatingHost = intPtr(preHost)
	m.PostRatingHost = intPtr(postHost)
	m.PreRatingGuest = intPtr(preGuest)
	m.PostRatingGuest = intPtr(postGuest)
	return &m, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
