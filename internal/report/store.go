package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/ledger"
)

// New creates a new Reports reader over db.
func New(db *sql.DB) Reports {
	return &store{
		db: db,
	}
}

const matchColumns = `m.id, m.host_id, m.guest_id, m.start_time, m.end_time, m.host_won,
	m.pre_rating_host, m.post_rating_host, m.pre_rating_guest, m.post_rating_guest`

// withNames scans a match row followed by the host and guest names.
type withNames struct {
	rows      *sql.Rows
	hostName  *string
	guestName *string
}

func (w withNames) Scan(dest ...any) error {
	return w.rows.Scan(append(dest, w.hostName, w.guestName)...)
}

func (s *store) PlayerSummary(ctx context.Context, playerID string) (*ledger.Player, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, birthdate, rating, region FROM players WHERE id = ?", playerID,
	)
	p, err := ledger.ScanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ledger.Error{Kind: ledger.KindNotFound, Field: "id", Err: fmt.Errorf("player %s not found", playerID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player summary: %w", err)
	}
	return p, nil
}

func (s *store) CompletedBetween(ctx context.Context, fromDay, toDay time.Time) ([]RangeRow, error) {
	from := startOfDay(fromDay)
	to := startOfDay(toDay).Add(24*time.Hour - time.Second)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+`, hp.name, gp.name
		FROM matches m
		JOIN players hp ON hp.id = m.host_id
		JOIN players gp ON gp.id = m.guest_id
		WHERE m.host_won IS NOT NULL AND m.start_time BETWEEN ? AND ?
		ORDER BY m.start_time, m.host_id
	`, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query completed matches: %w", err)
	}
	defer rows.Close()

	var result []RangeRow
	for rows.Next() {
		var hostName, guestName string
		m, err := ledger.ScanMatch(withNames{rows, &hostName, &guestName})
		if err != nil {
			return nil, fmt.Errorf("failed to scan completed match: %w", err)
		}
		result = append(result, RangeRow{
			MatchID:   m.ID,
			Start:     m.Start,
			End:       *m.End,
			HostID:    m.HostID,
			HostName:  hostName,
			GuestID:   m.GuestID,
			GuestName: guestName,
			HostWon:   *m.HostWon,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read completed matches: %w", err)
	}
	log.Debug("Range report", "from", from, "to", to, "rows", len(result))
	return result, nil
}

func (s *store) Ranking(ctx context.Context, playerIDs []string) ([]RankingRow, error) {
	ids := dedupe(playerIDs)
	if len(ids) < 2 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, 2*len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	names := make(map[string]string, len(ids))
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM players WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking players: %w", err)
	}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan ranking player: %w", err)
		}
		names[id] = name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ranking players: %w", err)
	}

	stats := make(map[string]*RankingRow, len(names))
	var order []string
	for _, id := range ids {
		if name, ok := names[id]; ok {
			stats[id] = &RankingRow{PlayerID: id, Name: name}
			order = append(order, id)
		}
	}
	if len(order) < 2 {
		return nil, nil
	}

	args = append(args, args...)
	rows, err = s.db.QueryContext(ctx, `
		SELECT host_id, guest_id, host_won FROM matches
		WHERE host_won IS NOT NULL
		  AND host_id IN (`+placeholders+`)
		  AND guest_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking matches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hostID, guestID string
		var hostWon bool
		if err := rows.Scan(&hostID, &guestID, &hostWon); err != nil {
			return nil, fmt.Errorf("failed to scan ranking match: %w", err)
		}
		winner, loser := hostID, guestID
		if !hostWon {
			winner, loser = guestID, hostID
		}
		stats[winner].Wins++
		stats[loser].Losses++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ranking matches: %w", err)
	}

	result := make([]RankingRow, 0, len(order))
	for _, id := range order {
		r := stats[id]
		if games := r.Wins + r.Losses; games > 0 {
			r.Percent = float64(r.Wins) / float64(games) * 100
		}
		result = append(result, *r)
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Percent != b.Percent {
			return a.Percent > b.Percent
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.PlayerID < b.PlayerID
	})
	return result, nil
}

func (s *store) History(ctx context.Context, playerID string) (*History, error) {
	p, err := s.PlayerSummary(ctx, playerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+`, hp.name, gp.name
		FROM matches m
		JOIN players hp ON hp.id = m.host_id
		JOIN players gp ON gp.id = m.guest_id
		WHERE m.host_id = ? OR m.guest_id = ?
		ORDER BY m.start_time, m.host_id
	`, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	h := &History{Player: *p}
	var last *int
	for rows.Next() {
		var hostName, guestName string
		m, err := ledger.ScanMatch(withNames{rows, &hostName, &guestName})
		if err != nil {
			return nil, fmt.Errorf("failed to scan history match: %w", err)
		}

		row := HistoryRow{MatchID: m.ID, Start: m.Start, End: m.End}
		var pre *int
		isHost := m.HostID == playerID
		if isHost {
			row.OpponentID, row.OpponentName = m.GuestID, guestName
		} else {
			row.OpponentID, row.OpponentName = m.HostID, hostName
		}
		if m.Completed() {
			won := *m.HostWon == isHost
			row.Result = "L"
			if won {
				row.Result = "W"
			}
			if isHost {
				pre, row.PostRating = m.PreRatingHost, m.PostRatingHost
			} else {
				pre, row.PostRating = m.PreRatingGuest, m.PostRatingGuest
			}
			row.Inconsistent = pre != nil && last != nil && *pre != *last
		}
		if row.PostRating != nil {
			last = row.PostRating
		}
		h.Rows = append(h.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match history: %w", err)
	}
	return h, nil
}

func (s *store) StaleScheduled(ctx context.Context, before time.Time) ([]ledger.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		WHERE m.host_won IS NULL AND m.start_time < ?
		ORDER BY m.start_time, m.host_id
	`, before.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled matches: %w", err)
	}
	defer rows.Close()

	var result []ledger.Match
	for rows.Next() {
		m, err := ledger.ScanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled match: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scheduled matches: %w", err)
	}
	return result, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dedupe keeps the first occurrence of every non-empty ID.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
