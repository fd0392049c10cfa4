package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kitabu")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 14*24*time.Hour, cfg.LendingPeriod)
	require.Len(t, cfg.KafkaBrokers, 2)
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kitabu")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("PORT", "7000")

	require.Equal(t, "7000", Load().Port)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.Panics(t, func() { Load() })
}
