package notifier

import (
	"context"
	"sync"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendResultNotificationFunc func(result MatchResult, dryRun bool) error

	// Call records
	SendResultNotificationCalls []MatchResult
	SendStaleReminderCalls      [][]StaleMatch
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendStaleReminderCalls = nil
}

func (m *Mock) SendResultNotification(ctx context.Context, result MatchResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, result)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(result, dryRun)
	}
	return nil
}

func (m *Mock) SendStaleReminder(ctx context.Context, matches []StaleMatch, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStaleReminderCalls = append(m.SendStaleReminderCalls, matches)
	return nil
}

// ResultNotifications returns a copy of the recorded result notifications.
func (m *Mock) ResultNotifications() []MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MatchResult(nil), m.SendResultNotificationCalls...)
}

// StaleReminders returns a copy of the recorded stale reminders.
func (m *Mock) StaleReminders() [][]StaleMatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]StaleMatch(nil), m.SendStaleReminderCalls...)
}
