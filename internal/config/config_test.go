package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDR", "WORKER_TIMEOUT", "HEALTH_SCHEDULE", "RULE_MARGIN", "ASSIST_WORKER_ID", "STATE_SIGNING_KEY", "LOG_LEVEL", "HEALTH_MONITOR_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", cfg.ServerAddr)
	assert.Equal(t, 30*time.Second, cfg.WorkerTimeout)
	assert.Equal(t, "@every 30s", cfg.HealthSchedule)
	assert.Equal(t, 1, cfg.RuleMargin)
	assert.Empty(t, cfg.AssistWorkerID)
	assert.Nil(t, cfg.StateSigningKey)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.HealthMonitor)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("WORKER_TIMEOUT", "5s")
	t.Setenv("SEND_MAX_ATTEMPTS", "4")
	t.Setenv("ASSIST_MIN_CONFIDENCE", "0.75")
	t.Setenv("STATE_SIGNING_KEY", "0a0b0c")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("HEALTH_MONITOR_ENABLED", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, 5*time.Second, cfg.WorkerTimeout)
	assert.Equal(t, 4, cfg.SendMaxAttempts)
	assert.Equal(t, 0.75, cfg.AssistMinConfidence)
	assert.Equal(t, []byte{0x0a, 0x0b, 0x0c}, cfg.StateSigningKey)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.HealthMonitor)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("HEALTH_TIMEOUT", "soon")
	t.Setenv("RULE_MIN_SCORE", "many")
	t.Setenv("LOG_LEVEL", "chatty")
	t.Setenv("STATE_SIGNING_KEY", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.HealthTimeout)
	assert.Equal(t, 1, cfg.RuleMinScore)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoadRejectsBadSigningKey(t *testing.T) {
	t.Setenv("STATE_SIGNING_KEY", "not-hex")

	_, err := Load()

	assert.Error(t, err)
}
