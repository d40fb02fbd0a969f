package processor

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/mauv0809/rating-ledger/internal/report"
)

// errUnknownTag marks lines that are skipped without output.
var errUnknownTag = errors.New("unknown tag")

func invalid(field string, err error) error {
	return &ledger.Error{Kind: ledger.KindValidation, Field: field, Err: err}
}

// parseCommand turns the fields of one line into a typed command. Every field
// is checked before any store access.
func parseCommand(fields []string) (any, error) {
	tag := fields[0]
	args := fields[1:]

	switch tag {
	case TagReset:
		return resetCommand{}, nil

	case TagCreatePlayer:
		if err := wantFields(args, 5); err != nil {
			return nil, err
		}
		birthdate, err := parseDay("birthdate", args[2])
		if err != nil {
			return nil, err
		}
		rating, err := parseInt("rating", args[3])
		if err != nil {
			return nil, err
		}
		return createPlayerCommand{player: ledger.Player{
			ID:        args[0],
			Name:      args[1],
			Birthdate: birthdate,
			Rating:    rating,
			Region:    args[4],
		}}, nil

	case TagCompleteMatch, TagCompleteByKey:
		if err := wantFields(args, 9); err != nil {
			return nil, err
		}
		c, err := parseCompletion(args)
		if err != nil {
			return nil, err
		}
		return completeCommand{completion: c, byKey: tag == TagCompleteByKey}, nil

	case TagScheduleMatch:
		if err := wantFields(args, 3); err != nil {
			return nil, err
		}
		start, err := parseTimestamp("start", args[2])
		if err != nil {
			return nil, err
		}
		return scheduleCommand{hostID: args[0], guestID: args[1], start: start}, nil

	case TagPlayerSummary:
		if err := minFields(args, 1); err != nil {
			return nil, err
		}
		return playerSummaryCommand{playerID: args[0]}, nil

	case TagRanking:
		return rankingCommand{playerIDs: args}, nil

	case TagCompletedRange:
		if err := minFields(args, 2); err != nil {
			return nil, err
		}
		from, err := parseDay("from", args[0])
		if err != nil {
			return nil, err
		}
		to, err := parseDay("to", args[1])
		if err != nil {
			return nil, err
		}
		return completedRangeCommand{from: from, to: to}, nil

	case TagHistory:
		if err := minFields(args, 1); err != nil {
			return nil, err
		}
		return historyCommand{playerID: args[0]}, nil
	}
	return nil, errUnknownTag
}

// parseCompletion reads host, guest, start, end, hostWon and the four ratings.
func parseCompletion(args []string) (ledger.Completion, error) {
	var c ledger.Completion
	var err error

	c.HostID, c.GuestID = args[0], args[1]
	if c.Start, err = parseTimestamp("start", args[2]); err != nil {
		return c, err
	}
	if c.End, err = parseTimestamp("end", args[3]); err != nil {
		return c, err
	}
	switch args[4] {
	case "1":
		c.HostWon = true
	case "0":
		c.HostWon = false
	default:
		return c, invalid("host_won", fmt.Errorf("must be 0 or 1, got %q", args[4]))
	}

	ratings := []struct {
		field string
		dst   *int
	}{
		{"pre_rating_host", &c.PreRatingHost},
		{"post_rating_host", &c.PostRatingHost},
		{"pre_rating_guest", &c.PreRatingGuest},
		{"post_rating_guest", &c.PostRatingGuest},
	}
	for i, r := range ratings {
		if *r.dst, err = parseInt(r.field, args[5+i]); err != nil {
			return c, err
		}
	}
	return c, nil
}

func wantFields(args []string, n int) error {
	if len(args) != n {
		return invalid("fields", fmt.Errorf("expected %d fields, got %d", n, len(args)))
	}
	return nil
}

func minFields(args []string, n int) error {
	if len(args) < n {
		return invalid("fields", fmt.Errorf("expected at least %d fields, got %d", n, len(args)))
	}
	return nil
}

func parseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(report.TimestampLayout, value)
	if err != nil {
		return time.Time{}, invalid(field, err)
	}
	return t, nil
}

func parseDay(field, value string) (time.Time, error) {
	t, err := time.Parse(report.DayLayout, value)
	if err != nil {
		return time.Time{}, invalid(field, err)
	}
	return t, nil
}

// parseInt accepts 32-bit values, the range ratings are stored with.
func parseInt(field, value string) (int, error) {
	v, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, invalid(field, err)
	}
	return int(v), nil
}
