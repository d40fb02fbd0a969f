package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		CommandsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_commands_processed_total",
			Help: "The total number of command lines processed, by tag.",
		}, []string{"tag"}),
		CommandsInvalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_commands_invalid_total",
			Help: "The total number of write command lines rejected as invalid, by tag.",
		}, []string{"tag"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_conflicts_total",
			Help: "The total number of writes rejected because of a conflict.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_matches_completed_total",
			Help: "The total number of matches completed or corrected.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_command_duration_seconds",
			Help:    "The duration of individual command processing.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		StaleScheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_stale_scheduled_matches",
			Help: "The number of scheduled matches whose start lies beyond the grace period.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CommandsProcessed,
		s.CommandsInvalid,
		s.Conflicts,
		s.MatchesCompleted,
		s.ProcessingDuration,
		s.StaleScheduled,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCommandsProcessed(tag string) {
	s.CommandsProcessed.WithLabelValues(tag).Inc()
}

func (s *Service) IncCommandsInvalid(tag string) {
	s.CommandsInvalid.WithLabelValues(tag).Inc()
}

func (s *Service) IncConflicts() {
	s.Conflicts.Inc()
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) SetStaleScheduled(count int) {
	s.StaleScheduled.Set(float64(count))
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
