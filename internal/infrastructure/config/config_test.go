package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, 25, cfg.DatabaseMaxConns)
	require.Equal(t, "migrations", cfg.MigrationsPath)
	require.Equal(t, 72*time.Hour, cfg.DisputeSLAWindow)
	require.Equal(t, 5*time.Minute, cfg.PolicyCacheTTL)
	require.Equal(t, 100, cfg.OutboxBatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DISPUTE_SLA_WINDOW", "48h")
	t.Setenv("OUTBOX_POLL_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.HTTPPort)
	require.Equal(t, 48*time.Hour, cfg.DisputeSLAWindow)
	require.Equal(t, time.Second, cfg.OutboxPollInterval)
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	t.Setenv("DATABASE_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
