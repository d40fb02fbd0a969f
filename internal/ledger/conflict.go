package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
)

// HasConflict scans every match the player hosts or guests in.
func (s *store) HasConflict(ctx context.Context, playerID string, candidate Interval, exclude *int64) (bool, error) {
	_, found, err := findConflict(ctx, s.db, playerID, candidate, exclude)
	return found, err
}

// findConflict returns the ID of the first match of the player that overlaps
// the candidate interval.
func findConflict(ctx context.Context, q querier, playerID string, candidate Interval, exclude *int64) (int64, bool, error) {
	query := "SELECT id, start_time, end_time FROM matches WHERE (host_id = ? OR guest_id = ?)"
	args := []any{playerID, playerID}
	if exclude != nil {
		query += " AND id <> ?"
		args = append(args, *exclude)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, false, storeError("scan matches for conflicts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			start int64
			end   sql.NullInt64
		)
		if err := rows.Scan(&id, &start, &end); err != nil {
			return 0, false, storeError("scan match row", err)
		}
		existing := Interval{Start: fromUnix(start)}
		if end.Valid {
			e := fromUnix(end.Int64)
			existing.End = &e
		}
		if existing.Overlaps(candidate) {
			return id, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return 0, false, storeError("scan matches for conflicts", err)
	}
	return 0, false, nil
}

// checkConflicts fails with a conflict error if the interval overlaps a match
// of either participant.
func checkConflicts(ctx context.Context, q querier, candidate Interval, exclude *int64, hostID, guestID string) error {
	for _, ref := range []struct{ field, id string }{{"host", hostID}, {"guest", guestID}} {
		matchID, found, err := findConflict(ctx, q, ref.id, candidate, exclude)
		if err != nil {
			return err
		}
		if found {
			log.Debug("Interval conflict", "player", ref.id, "conflictingMatchID", matchID, "start", candidate.Start)
			return conflictError(ref.field, "player %s already plays match %d at that time", ref.id, matchID)
		}
	}
	return nil
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
