package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rxdesk/sessionkeeper/internal/config"
)

func TestEnvConfigDefaults(t *testing.T) {
	cfg := config.New()

	require.Equal(t, "RxDesk Session Keeper", cfg.GetAppName())
	require.Equal(t, "development", cfg.GetEnv())
	require.Equal(t, "sessionkeeper.json", cfg.GetStorePath())
	require.Empty(t, cfg.GetRedisAddr())
	require.Equal(t, 5*time.Minute, cfg.GetWarningThreshold())
	require.Equal(t, time.Minute, cfg.GetCriticalThreshold())
	require.Equal(t, 30*time.Second, cfg.GetPollInterval())
	require.Equal(t, 30*time.Second, cfg.GetAutoSaveInterval())
	require.Equal(t, 24*time.Hour, cfg.GetDraftMaxAge())
	require.Equal(t, "http://localhost:8080/oauth2/token", cfg.GetRefreshEndpoint())
	require.Equal(t, 10*time.Second, cfg.GetRefreshTimeout())
}

func TestEnvConfigOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "Clinic Front End")
	t.Setenv("WARNING_THRESHOLD_SECONDS", "600")
	t.Setenv("CRITICAL_THRESHOLD_SECONDS", "90")
	t.Setenv("POLL_INTERVAL_SECONDS", "5")
	t.Setenv("REFRESH_ENDPOINT", "https://auth.clinic.example/oauth2/token")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg := config.New()

	require.Equal(t, "Clinic Front End", cfg.GetAppName())
	require.Equal(t, 10*time.Minute, cfg.GetWarningThreshold())
	require.Equal(t, 90*time.Second, cfg.GetCriticalThreshold())
	require.Equal(t, 5*time.Second, cfg.GetPollInterval())
	require.Equal(t, "https://auth.clinic.example/oauth2/token", cfg.GetRefreshEndpoint())
	require.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	require.Equal(t, 2, cfg.GetRedisDB())
}

func TestMalformedIntegerFallsBackToDefault(t *testing.T) {
	t.Setenv("POLL_INTERVAL_SECONDS", "not-a-number")
	t.Setenv("REDIS_DB", "two")

	cfg := config.New()

	require.Equal(t, 30*time.Second, cfg.GetPollInterval())
	require.Zero(t, cfg.GetRedisDB())
}

func TestSettingsZeroValueUsesDefaults(t *testing.T) {
	var cfg config.Settings

	require.Equal(t, 5*time.Minute, cfg.GetWarningThreshold())
	require.Equal(t, 24*time.Hour, cfg.GetDraftMaxAge())
	require.Equal(t, "sessionkeeper.json", cfg.GetStorePath())
}

func TestSettingsOverrides(t *testing.T) {
	cfg := config.NewSettings()
	cfg.WarningThreshold = 2 * time.Minute
	cfg.DraftMaxAge = time.Hour

	require.Equal(t, 2*time.Minute, cfg.GetWarningThreshold())
	require.Equal(t, time.Hour, cfg.GetDraftMaxAge())
	// Untouched fields keep their defaults.
	require.Equal(t, 30*time.Second, cfg.GetPollInterval())
}
