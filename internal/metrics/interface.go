package metrics

import "context"

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCommandsProcessed(tag string)
	IncCommandsInvalid(tag string)
	IncConflicts()
	IncMatchesCompleted()
	ObserveProcessingDuration(duration float64)
	SetStaleScheduled(count int)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists simple named counters alongside the ledger so they
// survive restarts.
type MetricsStore interface {
	Increment(ctx context.Context, key string)
	GetAll(ctx context.Context) (map[string]int, error)
}
