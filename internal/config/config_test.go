package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stufently/avia-search-bot/internal/config"
)

func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "TELEGRAM_TOKEN", "PRICES_URL", "GROUPED_PRICES_URL",
		"AUTOCOMPLETE_URL", "CURRENCY", "LOCALE", "REQUEST_TIMEOUT",
		"MAX_CONCURRENT_QUERIES", "CACHE_ENABLED", "REDIS_HOST",
		"REDIS_PORT", "REDIS_TTL",
	} {
		t.Setenv(key, "")
	}
}

// TestLoad_defaults verifies that optional variables fall back to their
// defaults when only the required API_TOKEN is provided.
func TestLoad_defaults(t *testing.T) {
	clearOptional(t)
	t.Setenv("API_TOKEN", "tp-token")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "tp-token", cfg.APIToken)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "rub", cfg.Currency)
	require.Equal(t, "ru", cfg.Locale)
	require.Equal(t, 20*time.Second, cfg.RequestTimeout)
	require.Equal(t, 4, cfg.MaxConcurrent)
	require.False(t, cfg.CacheEnabled)
	require.Equal(t, "localhost", cfg.RedisHost)
	require.Equal(t, "6379", cfg.RedisPort)
	require.Equal(t, 24*time.Hour, cfg.RedisTTL)
	require.Empty(t, cfg.TelegramToken)
	require.Empty(t, cfg.PricesURL)
}

// TestLoad_overrides verifies every value can be overridden via env.
func TestLoad_overrides(t *testing.T) {
	clearOptional(t)
	t.Setenv("API_TOKEN", "tp-token")
	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("PRICES_URL", "http://localhost:9001/prices")
	t.Setenv("GROUPED_PRICES_URL", "http://localhost:9001/grouped")
	t.Setenv("AUTOCOMPLETE_URL", "http://localhost:9001/places")
	t.Setenv("CURRENCY", "eur")
	t.Setenv("LOCALE", "en")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("MAX_CONCURRENT_QUERIES", "8")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TTL", "1h")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "tg-token", cfg.TelegramToken)
	require.Equal(t, "http://localhost:9001/prices", cfg.PricesURL)
	require.Equal(t, "http://localhost:9001/grouped", cfg.GroupedURL)
	require.Equal(t, "http://localhost:9001/places", cfg.AutocompleteURL)
	require.Equal(t, "eur", cfg.Currency)
	require.Equal(t, "en", cfg.Locale)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, 8, cfg.MaxConcurrent)
	require.True(t, cfg.CacheEnabled)
	require.Equal(t, "redis", cfg.RedisHost)
	require.Equal(t, "6380", cfg.RedisPort)
	require.Equal(t, time.Hour, cfg.RedisTTL)
}

// TestLoad_missingRequired verifies the error names the missing
// variable.
func TestLoad_missingRequired(t *testing.T) {
	clearOptional(t)
	t.Setenv("API_TOKEN", "")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "API_TOKEN")
}

// TestLoad_invalidNumbersFallBack verifies unparseable numeric values
// keep their defaults instead of failing.
func TestLoad_invalidNumbersFallBack(t *testing.T) {
	clearOptional(t)
	t.Setenv("API_TOKEN", "tp-token")
	t.Setenv("MAX_CONCURRENT_QUERIES", "many")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, 4, cfg.MaxConcurrent)
	require.Equal(t, 20*time.Second, cfg.RequestTimeout)
}
