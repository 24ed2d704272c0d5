package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/uniassist/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"ENV", "UNIASSIST_BACKEND_URL", "UNIASSIST_STORE", "UNIASSIST_STORE_PATH", "UNIASSIST_EXPIRY_BUFFER", "UNIASSIST_SINGLE_FLIGHT_REFRESH"} {
		t.Setenv(v, "")
	}
	t.Setenv("UNIASSIST_DATA_FOLDER", "/tmp/uniassist")
	c := config.New()

	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8080", c.GetBackendURL())
	require.Equal(t, 5*time.Minute, c.GetExpiryBuffer())
	require.Equal(t, time.Hour, c.GetBackgroundRefreshInterval())
	require.Equal(t, time.Duration(0), c.GetRequestTimeout())
	require.True(t, c.GetSingleFlightRefresh())
	require.Equal(t, 50, c.GetMaxHistoryEntries())
	require.Equal(t, "file", c.GetStoreBackend())
	require.Equal(t, filepath.Join("/tmp/uniassist", "state.json"), c.GetStorePath())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("UNIASSIST_BACKEND_URL", "https://assistant.example.edu/")
	t.Setenv("UNIASSIST_EXPIRY_BUFFER", "2m")
	t.Setenv("UNIASSIST_SINGLE_FLIGHT_REFRESH", "false")
	t.Setenv("UNIASSIST_MAX_HISTORY", "10")
	t.Setenv("UNIASSIST_STORE", "sqlite")
	t.Setenv("UNIASSIST_DATA_FOLDER", "/var/lib/uniassist")
	t.Setenv("REDIS_DB", "not-a-number")

	c := config.New()
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, "https://assistant.example.edu", c.GetBackendURL())
	require.Equal(t, 2*time.Minute, c.GetExpiryBuffer())
	require.False(t, c.GetSingleFlightRefresh())
	require.Equal(t, 10, c.GetMaxHistoryEntries())
	require.Equal(t, filepath.Join("/var/lib/uniassist", "state.db"), c.GetStorePath())
	require.Equal(t, 0, c.GetRedisDB())
}

func TestBackendConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	c := config.NewBackend()
	require.Equal(t, ":9090", c.GetPort())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://b.test"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://c.test"))
	require.Equal(t, 24*time.Hour, c.GetRefreshGracePeriod())
}
