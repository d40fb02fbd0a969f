package ledger

import (
	"context"
	"time"
)

// Ledger owns players and matches. Every mutating call runs as one
// transaction: it either commits completely or leaves the store untouched.
type Ledger interface {
	// CreatePlayer registers a new player. IDs and names are unique.
	CreatePlayer(ctx context.Context, p Player) error
	PlayerExists(ctx context.Context, playerID string) (bool, error)
	GetPlayer(ctx context.Context, playerID string) (*Player, error)

	// HasConflict reports whether the candidate interval overlaps any match of
	// the player, ignoring the match with ID exclude when it is set.
	HasConflict(ctx context.Context, playerID string, candidate Interval, exclude *int64) (bool, error)

	// ScheduleMatch records a future match without an outcome.
	ScheduleMatch(ctx context.Context, hostID, guestID string, start time.Time) (int64, error)
	// CompleteMatch inserts a completed match, or completes/corrects the match
	// identified by c.MatchID, and updates both players' ratings.
	CompleteMatch(ctx context.Context, c Completion) (int64, error)
	// CompleteScheduled completes the scheduled match keyed by host, guest and start.
	CompleteScheduled(ctx context.Context, c Completion) (int64, error)
	GetMatch(ctx context.Context, matchID int64) (*Match, error)
}
