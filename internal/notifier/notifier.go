package notifier

import (
	"context"
	"time"
)

// Notifier defines a high-level interface for sending notifications about ledger events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For completed matches
	SendResultNotification(ctx context.Context, result MatchResult, dryRun bool) error
	// For scheduled matches that never received an outcome
	SendStaleReminder(ctx context.Context, matches []StaleMatch, dryRun bool) error
}

// MatchResult is a completed match with the players' display names resolved.
type MatchResult struct {
	MatchID         int64
	HostID          string
	HostName        string
	GuestID         string
	GuestName       string
	Start           time.Time
	End             time.Time
	HostWon         bool
	PostRatingHost  int
	PostRatingGuest int
}

// Winner returns the display name of the winning player.
func (r MatchResult) Winner() string {
	if r.HostWon {
		return r.HostName
	}
	return r.GuestName
}

// MaxStaleMatches is the number of matches one stale reminder lists by name.
const MaxStaleMatches = 20

// StaleMatch is a scheduled match whose start has long passed.
type StaleMatch struct {
	MatchID int64
	HostID  string
	GuestID string
	Start   time.Time
}
