package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("reads required and optional values", func(t *testing.T) {
		t.Setenv("DB_NAME", "ledger.db")
		t.Setenv("PORT", "9090")
		t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
		t.Setenv("SLACK_CHANNEL_ID", "C123")
		t.Setenv("SWEEP_INTERVAL", "1m")

		cfg := Load()

		assert.Equal(t, "ledger.db", cfg.DBName)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, time.Minute, cfg.SweepInterval)
		assert.Equal(t, defaultSweepGrace, cfg.SweepGrace)
		assert.True(t, cfg.SlackEnabled())
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		t.Setenv("DB_NAME", "ledger.db")
		t.Setenv("PORT", "")
		t.Setenv("SLACK_BOT_TOKEN", "")
		t.Setenv("SWEEP_INTERVAL", "not-a-duration")

		cfg := Load()

		assert.Equal(t, defaultPort, cfg.Port)
		assert.Equal(t, defaultSweepInterval, cfg.SweepInterval)
		assert.False(t, cfg.SlackEnabled())
	})
}
