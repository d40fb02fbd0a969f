package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	maxPlayerIDLen   = 6
	maxPlayerNameLen = 255
	maxRegionLen     = 2
)

func validatePlayer(p Player) error {
	if n := utf8.RuneCountInString(p.ID); n == 0 || n > maxPlayerIDLen {
		return validationError("id", "player id must be 1-%d characters, got %q", maxPlayerIDLen, p.ID)
	}
	if n := utf8.RuneCountInString(p.Name); n == 0 || n > maxPlayerNameLen {
		return validationError("name", "player name must be 1-%d characters", maxPlayerNameLen)
	}
	if p.Birthdate.IsZero() {
		return validationError("birthdate", "birthdate is required")
	}
	if n := utf8.RuneCountInString(p.Region); n > maxRegionLen {
		return validationError("region", "region must be at most %d characters, got %q", maxRegionLen, p.Region)
	}
	return nil
}

// CreatePlayer inserts a new player after checking that neither the ID nor the
// name is taken.
func (s *store) CreatePlayer(ctx context.Context, p Player) error {
	if err := validatePlayer(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer tx.Rollback()

	var idTaken, nameTaken bool
	err = tx.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM players WHERE id = ?),
			EXISTS(SELECT 1 FROM players WHERE name = ?)
	`, p.ID, p.Name).Scan(&idTaken, &nameTaken)
	if err != nil {
		return storeError("check player uniqueness", err)
	}
	if idTaken {
		return conflictError("id", "player %s already exists", p.ID)
	}
	if nameTaken {
		return conflictError("name", "player name %q is already taken", p.Name)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO players (id, name, birthdate, rating, region) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Birthdate.Format(DateLayout), p.Rating, p.Region,
	)
	if err != nil {
		return storeError("insert player", err)
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit player", err)
	}

	log.Info("Created player", "playerID", p.ID, "name", p.Name, "rating", p.Rating)
	return nil
}

func (s *store) PlayerExists(ctx context.Context, playerID string) (bool, error) {
	return playerExists(ctx, s.db, playerID)
}

func (s *store) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	return getPlayer(ctx, s.db, playerID)
}

func playerExists(ctx context.Context, q querier, playerID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		return false, storeError("check if player exists", err)
	}
	return exists, nil
}

func getPlayer(ctx context.Context, q querier, playerID string) (*Player, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, name, birthdate, rating, region FROM players WHERE id = ?", playerID,
	)
	p, err := ScanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError("id", "player %s not found", playerID)
	}
	if err != nil {
		return nil, storeError("get player", err)
	}
	return p, nil
}

// ScanPlayer reads a player from a row selecting id, name, birthdate, rating
// and region.
func ScanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	var birthdate string
	if err := scanner.Scan(&p.ID, &p.Name, &birthdate, &p.Rating, &p.Region); err != nil {
		return nil, err
	}
	var err error
	p.Birthdate, err = time.Parse(DateLayout, birthdate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse birthdate %q: %w", birthdate, err)
	}
	return &p, nil
}

// requirePlayers fails with a not-found error naming the first missing player.
func requirePlayers(ctx context.Context, q querier, hostID, guestID string) error {
	for _, ref := range []struct{ field, id string }{{"host", hostID}, {"guest", guestID}} {
		exists, err := playerExists(ctx, q, ref.id)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundError(ref.field, "player %s not found", ref.id)
		}
	}
	return nil
}

// setRating overwrites a player's current rating. Only the rating propagator calls it.
func setRating(ctx context.Context, tx *sql.Tx, playerID string, rating int) error {
	res, err := tx.ExecContext(ctx, "UPDATE players SET rating = ? WHERE id = ?", rating, playerID)
	if err != nil {
		return storeError("update rating", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError("update rating", err)
	}
	if n != 1 {
		return notFoundError("id", "player %s not found", playerID)
	}
	return nil
}
