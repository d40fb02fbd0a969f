package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/notifier"
	"github.com/mauv0809/rating-ledger/internal/report"
)

// Sweeper periodically looks for scheduled matches that never received an
// outcome. It only reads the ledger.
type Sweeper struct {
	reports  report.Reports
	metrics  metrics.Metrics
	notifier notifier.Notifier
	grace    time.Duration
	dryRun   bool
	now      func() time.Time

	mu        sync.Mutex
	reminded  map[int64]bool
	scheduler gocron.Scheduler
}

// New creates a Sweeper. A nil notifier disables reminders.
func New(reports report.Reports, metrics metrics.Metrics, notifier notifier.Notifier, grace time.Duration, dryRun bool) *Sweeper {
	return &Sweeper{
		reports:  reports,
		metrics:  metrics,
		notifier: notifier,
		grace:    grace,
		dryRun:   dryRun,
		now:      time.Now,
		reminded: make(map[int64]bool),
	}
}

// Start runs Sweep immediately and then every interval until Stop.
func (s *Sweeper) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(context.Background()); err != nil {
				log.Error("Stale schedule sweep failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep job: %w", err)
	}
	sched.Start()

	s.mu.Lock()
	s.scheduler = sched
	s.mu.Unlock()
	log.Info("Stale schedule sweeper started", "interval", interval, "grace", s.grace)
	return nil
}

// Stop shuts the scheduler down and waits for a running sweep to finish.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	sched := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()
	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

// Sweep counts scheduled matches that started more than the grace period ago,
// exports the count and reminds about matches not reported before.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.grace)
	stale, err := s.reports.StaleScheduled(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale matches: %w", err)
	}
	s.metrics.SetStaleScheduled(len(stale))
	if len(stale) == 0 {
		log.Debug("No stale scheduled matches", "cutoff", cutoff)
		return 0, nil
	}
	log.Warn("Scheduled matches without a result", "count", len(stale), "cutoff", cutoff)

	if s.notifier == nil {
		return len(stale), nil
	}

	s.mu.Lock()
	var fresh []notifier.StaleMatch
	for _, m := range stale {
		if !s.reminded[m.ID] {
			fresh = append(fresh, notifier.StaleMatch{MatchID: m.ID, HostID: m.HostID, GuestID: m.GuestID, Start: m.Start})
		}
	}
	s.mu.Unlock()
	if len(fresh) == 0 {
		return len(stale), nil
	}

	// A match counts as reminded once a message names it.
	for len(fresh) > 0 {
		page := fresh[:min(len(fresh), notifier.MaxStaleMatches)]
		fresh = fresh[len(page):]
		if err := s.notifier.SendStaleReminder(ctx, page, s.dryRun); err != nil {
			log.Error("Failed to send stale reminder", "error", err, "pending", len(page)+len(fresh))
			break
		}
		s.mu.Lock()
		for _, m := range page {
			s.reminded[m.MatchID] = true
		}
		s.mu.Unlock()
	}
	return len(stale), nil
}
