package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	Port          string
	Turso         TursoConfig
	ProjectID     string
	Slack         SlackConfig
	SweepInterval time.Duration
	// SweepGrace is how long a scheduled match may sit past its start before
	// the sweeper reports it as stale.
	SweepGrace time.Duration
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// SlackEnabled reports whether result notifications can be posted.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}
