package ledger

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/log"
)

// applyRatings writes the post-match ratings of a completed match onto its
// players, inside the transaction that completed the match. A player whose
// chronologically latest completed match is a different one keeps the rating
// recorded there.
func applyRatings(ctx context.Context, tx *sql.Tx, matchID int64, hostID, guestID string, postHost, postGuest int) error {
	for _, r := range []struct {
		playerID string
		rating   int
	}{{hostID, postHost}, {guestID, postGuest}} {
		newer, err := hasLaterCompletedMatch(ctx, tx, r.playerID, matchID)
		if err != nil {
			return err
		}
		if newer {
			log.Debug("Keeping rating from a later completed match", "playerID", r.playerID, "matchID", matchID)
			continue
		}
		if err := setRating(ctx, tx, r.playerID, r.rating); err != nil {
			return err
		}
		log.Debug("Updated rating", "playerID", r.playerID, "rating", r.rating, "matchID", matchID)
	}
	return nil
}

func hasLaterCompletedMatch(ctx context.Context, tx *sql.Tx, playerID string, matchID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM matches m, matches cur
			WHERE cur.id = ?
			  AND m.id <> cur.id
			  AND (m.host_id = ? OR m.guest_id = ?)
			  AND m.host_won IS NOT NULL
			  AND m.start_time > cur.start_time
		)
	`, matchID, playerID, playerID).Scan(&exists)
	if err != nil {
		return false, storeError("look up later matches", err)
	}
	return exists, nil
}
