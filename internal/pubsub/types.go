package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventPlayerCreated  EventType = "player-created"
	EventMatchScheduled EventType = "match-scheduled"
	EventMatchCompleted EventType = "match-completed"
)

// LedgerEvent is published after a ledger write commits. Fields that do not
// apply to the event type are left zero.
type LedgerEvent struct {
	ID         string    `msgpack:"id" json:"id"`
	Type       EventType `msgpack:"type" json:"type"`
	OccurredAt time.Time `msgpack:"occurred_at" json:"occurred_at"`

	PlayerID string `msgpack:"player_id,omitempty" json:"player_id,omitempty"`

	MatchID         int64     `msgpack:"match_id,omitempty" json:"match_id,omitempty"`
	HostID          string    `msgpack:"host_id,omitempty" json:"host_id,omitempty"`
	GuestID         string    `msgpack:"guest_id,omitempty" json:"guest_id,omitempty"`
	Start           time.Time `msgpack:"start,omitempty" json:"start,omitempty"`
	End             time.Time `msgpack:"end,omitempty" json:"end,omitempty"`
	HostWon         bool      `msgpack:"host_won" json:"host_won"`
	PostRatingHost  int       `msgpack:"post_rating_host,omitempty" json:"post_rating_host,omitempty"`
	PostRatingGuest int       `msgpack:"post_rating_guest,omitempty" json:"post_rating_guest,omitempty"`
}

// NewEvent returns an event of the given type with a fresh ID.
func NewEvent(t EventType) LedgerEvent {
	return LedgerEvent{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}
