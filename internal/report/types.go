package report

import (
	"database/sql"
	"time"

	"github.com/mauv0809/rating-ledger/internal/ledger"
)

const (
	// TimestampLayout is the wire format of match start and end times.
	TimestampLayout = "20060102:15:04:05"
	// DayLayout is the wire format of birthdates and report day bounds.
	DayLayout = "20060102"
)

type store struct {
	db *sql.DB
}

// RangeRow is one completed match in a date-range report.
type RangeRow struct {
	MatchID   int64     `json:"match_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	HostID    string    `json:"host_id"`
	HostName  string    `json:"host_name"`
	GuestID   string    `json:"guest_id"`
	GuestName string    `json:"guest_name"`
	HostWon   bool      `json:"host_won"`
}

// Winner returns "H" when the host won and "G" otherwise.
func (r RangeRow) Winner() string {
	if r.HostWon {
		return "H"
	}
	return "G"
}

// RankingRow is one player's record against the rest of a ranking set.
type RankingRow struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Percent  float64 `json:"percent"`
}

// History is a player's full match sequence.
type History struct {
	Player ledger.Player `json:"player"`
	Rows   []HistoryRow  `json:"rows"`
}

// HistoryRow is one match seen from the history's player. Result is "W", "L",
// or empty while the match is scheduled.
type HistoryRow struct {
	MatchID      int64      `json:"match_id"`
	Start        time.Time  `json:"start"`
	End          *time.Time `json:"end,omitempty"`
	OpponentID   string     `json:"opponent_id"`
	OpponentName string     `json:"opponent_name"`
	Result       string     `json:"result"`
	PostRating   *int       `json:"post_rating,omitempty"`
	Inconsistent bool       `json:"inconsistent"`
}
