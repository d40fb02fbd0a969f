package report

import (
	"context"
	"time"

	"github.com/mauv0809/rating-ledger/internal/ledger"
)

// Reports exposes read-only projections of the ledger. Implementations take
// no locks and never write.
type Reports interface {
	PlayerSummary(ctx context.Context, playerID string) (*ledger.Player, error)
	// CompletedBetween lists completed matches starting on any day from fromDay
	// through toDay inclusive, ordered by start then host ID.
	CompletedBetween(ctx context.Context, fromDay, toDay time.Time) ([]RangeRow, error)
	// Ranking returns nil when fewer than two of the given IDs are known players.
	Ranking(ctx context.Context, playerIDs []string) ([]RankingRow, error)
	History(ctx context.Context, playerID string) (*History, error)
	// StaleScheduled lists matches still without an outcome that started before the given time.
	StaleScheduled(ctx context.Context, before time.Time) ([]ledger.Match, error)
}
