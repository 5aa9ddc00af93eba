package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cityexplorer/internal/provider"
)

// clearEnv unsets every variable Config reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DB_WAIT", "TIMEZONE", "STORE_TIMEOUT", "PROVIDER_TIMEOUT",
		"GEOCODE_API_KEY", "WEATHER_API_KEY", "TRAIL_API_KEY", "MOVIE_API_KEY",
		"GEOCODE_URL", "WEATHER_URL", "TRAIL_URL", "MOVIE_URL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite://data/cityexplorer.db", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, provider.DefaultEndpoints(), cfg.Endpoints())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://localhost/city")
	t.Setenv("GEOCODE_API_KEY", "geo-key")
	t.Setenv("PROVIDER_TIMEOUT", "250ms")

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "postgres://localhost/city", cfg.DatabaseURL)
	assert.Equal(t, "geo-key", cfg.Keys().Geocode)
	assert.Equal(t, 250*time.Millisecond, cfg.ProviderTimeout)
}

func TestParse_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := Parse([]string{"--port=9000", "--weather-url=http://localhost:1234/forecast"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://localhost:1234/forecast", cfg.Endpoints().Weather)
}

func TestParse_RejectsUnknownLogFormat(t *testing.T) {
	_, err := Parse([]string{"--log-format=xml"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "3000", DatabaseURL: ":memory:", Timezone: "UTC"}
	assert.NoError(t, valid.Validate())

	noPort := valid
	noPort.Port = ""
	assert.Error(t, noPort.Validate())

	noDB := valid
	noDB.DatabaseURL = ""
	assert.Error(t, noDB.Validate())

	badZone := valid
	badZone.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, badZone.Validate())
	assert.Equal(t, time.UTC, badZone.Location())
}

func TestMissingKeys(t *testing.T) {
	cfg := Config{GeocodeAPIKey: "g", MovieAPIKey: "m"}
	assert.Equal(t, []provider.Name{provider.Weather, provider.Trails}, cfg.MissingKeys())

	cfg.WeatherAPIKey, cfg.TrailAPIKey = "w", "t"
	assert.Empty(t, cfg.MissingKeys())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MOVIE_API_KEY=from-file\nPORT=7000\n"), 0644))

	clearEnv(t)
	t.Setenv("PORT", "8000")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.MovieAPIKey)
	assert.Equal(t, "8000", cfg.Port, "existing environment wins over .env")
}
