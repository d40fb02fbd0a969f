package processor

import (
	"time"

	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/pubsub"
	"github.com/mauv0809/rating-ledger/internal/report"
)

// Processor reads command files and applies them to the ledger.
type Processor struct {
	ledger   ledger.Ledger
	reports  report.Reports
	reset    ResetFunc
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	pubsub   pubsub.PubSubClient
}

// Summary counts what a ProcessFile call saw.
type Summary struct {
	Lines   int
	Invalid int
}

// Command tags.
const (
	TagReset          = "e"
	TagCreatePlayer   = "p"
	TagCompleteMatch  = "m"
	TagScheduleMatch  = "n"
	TagCompleteByKey  = "c"
	TagPlayerSummary  = "P"
	TagRanking        = "A"
	TagCompletedRange = "D"
	TagHistory        = "M"
)

// isWrite reports whether a tag mutates the ledger and therefore answers a
// failure with an Input-Invalid line.
func isWrite(tag string) bool {
	switch tag {
	case TagCreatePlayer, TagCompleteMatch, TagScheduleMatch, TagCompleteByKey:
		return true
	}
	return false
}

type resetCommand struct{}

type createPlayerCommand struct {
	player ledger.Player
}

// completeCommand backs both "m" and "c"; byKey selects the scheduled-match lookup.
type completeCommand struct {
	completion ledger.Completion
	byKey      bool
}

type scheduleCommand struct {
	hostID  string
	guestID string
	start   time.Time
}

type playerSummaryCommand struct {
	playerID string
}

type rankingCommand struct {
	playerIDs []string
}

type completedRangeCommand struct {
	from time.Time
	to   time.Time
}

type historyCommand struct {
	playerID string
}
