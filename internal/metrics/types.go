package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	CommandsProcessed  *prometheus.CounterVec
	CommandsInvalid    *prometheus.CounterVec
	Conflicts          prometheus.Counter
	MatchesCompleted   prometheus.Counter
	ProcessingDuration prometheus.Histogram
	StaleScheduled     prometheus.Gauge
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Keys of the persisted counters kept in the metrics table.
const (
	KeyLinesProcessed = "lines_processed"
	KeyLinesInvalid   = "lines_invalid"
)

// TagKey is the persisted counter key for a command tag, e.g. "tag_m".
func TagKey(tag string) string {
	return "tag_" + tag
}
