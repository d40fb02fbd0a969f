package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	commandsProcessed   map[string]int
	commandsInvalid     map[string]int
	conflicts           int
	matchesCompleted    int
	processingDurations []float64
	staleScheduled      int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		commandsProcessed:   make(map[string]int),
		commandsInvalid:     make(map[string]int),
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncCommandsProcessed(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandsProcessed[tag]++
}

func (m *Mock) IncCommandsInvalid(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandsInvalid[tag]++
}

func (m *Mock) IncConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) SetStaleScheduled(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleScheduled = count
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// CommandsProcessed returns how often IncCommandsProcessed was called for tag.
func (m *Mock) CommandsProcessed(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commandsProcessed[tag]
}

// CommandsInvalid returns how often IncCommandsInvalid was called for tag.
func (m *Mock) CommandsInvalid(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commandsInvalid[tag]
}

// Conflicts returns the number of times IncConflicts was called.
func (m *Mock) Conflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflicts
}

// MatchesCompleted returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

// ProcessingDurations returns the number of observed durations.
func (m *Mock) ProcessingDurations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processingDurations)
}

// StaleScheduled returns the last value passed to SetStaleScheduled.
func (m *Mock) StaleScheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staleScheduled
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
