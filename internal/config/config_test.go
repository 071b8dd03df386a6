package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresABackend(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_BackendsAreExclusive(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/saaskit.db")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/saaskit.db")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("ANALYTICS_URL", "")
	t.Setenv("VOTE_MAX_ATTEMPTS", "")
	t.Setenv("VOTE_INITIAL_BACKOFF", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/saaskit.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.AnalyticsURL)
	assert.Equal(t, 8, cfg.VoteMaxAttempts)
	assert.Equal(t, 5*time.Millisecond, cfg.VoteInitialBackoff)
}

func TestLoad_InvalidVoteSettings(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/saaskit.db")
	t.Setenv("REDIS_URL", "")

	t.Setenv("VOTE_MAX_ATTEMPTS", "zero")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("VOTE_MAX_ATTEMPTS", "0")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("VOTE_MAX_ATTEMPTS", "8")
	t.Setenv("VOTE_INITIAL_BACKOFF", "not-a-duration")
	_, err = Load()
	require.Error(t, err)
}
