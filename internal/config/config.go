// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every value the binaries read from the environment.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// APIToken is the Travelpayouts access token. Required.
	APIToken string

	// TelegramToken is the bot token. Required by the bot binary only,
	// so Load does not enforce it.
	TelegramToken string

	// PricesURL, GroupedURL and AutocompleteURL override the upstream
	// endpoints. Empty values keep the production defaults.
	PricesURL       string
	GroupedURL      string
	AutocompleteURL string

	// Currency is the display currency for fares. Defaults to "rub".
	Currency string

	// Locale is the autocomplete locale. Defaults to "ru".
	Locale string

	// RequestTimeout bounds each upstream call. Defaults to 20s.
	RequestTimeout time.Duration

	// MaxConcurrent bounds parallel upstream calls within one search.
	// Defaults to 4.
	MaxConcurrent int

	// CacheEnabled turns on the Redis place cache. Defaults to false;
	// the base design resolves cities on every request.
	CacheEnabled bool
	RedisHost    string
	RedisPort    string
	RedisTTL     time.Duration
}

// Load reads configuration from environment variables. It returns an
// error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		PricesURL:       os.Getenv("PRICES_URL"),
		GroupedURL:      os.Getenv("GROUPED_PRICES_URL"),
		AutocompleteURL: os.Getenv("AUTOCOMPLETE_URL"),
		Currency:        getEnv("CURRENCY", "rub"),
		Locale:          getEnv("LOCALE", "ru"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 20*time.Second),
		MaxConcurrent:   getEnvInt("MAX_CONCURRENT_QUERIES", 4),
		CacheEnabled:    getEnvBool("CACHE_ENABLED", false),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisTTL:        getEnvDuration("REDIS_TTL", 24*time.Hour),
	}

	var missing []string

	cfg.APIToken = os.Getenv("API_TOKEN")
	if cfg.APIToken == "" {
		missing = append(missing, "API_TOKEN")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
