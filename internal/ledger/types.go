package ledger

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// DateLayout is the storage format of a player's birthdate.
const DateLayout = "2006-01-02"

// store handles all database operations for the ledger.
type store struct {
	db *sql.DB
	// mu serializes writers so a conflict scan and the write it guards commit together.
	mu sync.Mutex
}

// Player is a registered competitor.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Birthdate time.Time `json:"birthdate"`
	Rating    int       `json:"rating"`
	Region    string    `json:"region"`
}

// Match is a head-to-head game between a host and a guest. End, HostWon and the
// ratings stay nil while the match is scheduled.
type Match struct {
	ID              int64      `json:"id"`
	HostID          string     `json:"host_id"`
	GuestID         string     `json:"guest_id"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	HostWon         *bool      `json:"host_won,omitempty"`
	PreRatingHost   *int       `json:"pre_rating_host,omitempty"`
	PostRatingHost  *int       `json:"post_rating_host,omitempty"`
	PreRatingGuest  *int       `json:"pre_rating_guest,omitempty"`
	PostRatingGuest *int       `json:"post_rating_guest,omitempty"`
}

// Completed reports whether an outcome has been recorded.
func (m Match) Completed() bool {
	return m.HostWon != nil
}

// Interval returns the span the match occupies for conflict detection.
func (m Match) Interval() Interval {
	return Interval{Start: m.Start, End: m.End}
}

// Completion records the outcome of a match. A nil MatchID inserts a new
// completed match; otherwise the identified row is completed or corrected.
type Completion struct {
	MatchID         *int64
	HostID          string
	GuestID         string
	Start           time.Time
	End             time.Time
	HostWon         bool
	PreRatingHost   int
	PostRatingHost  int
	PreRatingGuest  int
	PostRatingGuest int
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
