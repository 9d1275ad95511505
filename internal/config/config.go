// Package config provides configuration loading and management.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/makhin/gedsync/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	// Confirmed-mappings store configuration
	DatabaseURL       string // PostgreSQL connection string (if set, uses PostgreSQL)
	SQLitePath        string // SQLite database path (if set, uses SQLite)
	ConfirmedStoreDSN string // WAVE_CONFIRMED_STORE_DSN: file path for the default file-backed store

	// Server configuration
	Port      int    // HTTP server port (default: 8080)
	LogLevel  string // Logging level: debug, info, warn, error (default: info)
	LogFormat string // Log format: text, json (default: text)

	// Wave Compare Engine configuration (§3 CompareOptions, §A)
	MaxLevel               int
	ThresholdStrategy      string
	BaseThreshold          int
	ResolveConflicts       bool
	Interactive            bool
	LowConfidenceThreshold int
	MinConfidenceThreshold int
	MaxCandidates          int
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SQLitePath:             os.Getenv("SQLITE_PATH"),
		ConfirmedStoreDSN:      getEnvOrDefault("WAVE_CONFIRMED_STORE_DSN", "./confirmed-mappings.json"),
		Port:                   getEnvIntOrDefault("PORT", 8080),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "text"),
		MaxLevel:               getEnvIntOrDefault("WAVE_MAX_LEVEL", 0),
		ThresholdStrategy:      getEnvOrDefault("WAVE_THRESHOLD_STRATEGY", "adaptive"),
		BaseThreshold:          getEnvIntOrDefault("WAVE_BASE_THRESHOLD", 50),
		ResolveConflicts:       getEnvBoolOrDefault("WAVE_RESOLVE_CONFLICTS", true),
		Interactive:            getEnvBoolOrDefault("WAVE_INTERACTIVE", false),
		LowConfidenceThreshold: getEnvIntOrDefault("WAVE_LOW_CONFIDENCE", 85),
		MinConfidenceThreshold: getEnvIntOrDefault("WAVE_MIN_CONFIDENCE", 60),
		MaxCandidates:          getEnvIntOrDefault("WAVE_MAX_CANDIDATES", 3),
	}
}

// UsePostgreSQL returns true if PostgreSQL should be used for the confirmed
// mappings store.
func (c *Config) UsePostgreSQL() bool {
	return c.DatabaseURL != ""
}

// UseSQLite returns true if SQLite should be used for the confirmed
// mappings store.
func (c *Config) UseSQLite() bool {
	return c.DatabaseURL == "" && c.SQLitePath != ""
}

// CompareOptions derives domain.CompareOptions from the loaded config.
// ConfirmedMappingsPath is set from WAVE_CONFIRMED_STORE_DSN; a caller may
// still override it per run (e.g. from a request's options).
func (c *Config) CompareOptions() domain.CompareOptions {
	return domain.CompareOptions{
		MaxLevel:               c.MaxLevel,
		ThresholdStrategy:      domain.ThresholdStrategy(strings.ToLower(c.ThresholdStrategy)),
		BaseThreshold:          c.BaseThreshold,
		ResolveConflicts:       c.ResolveConflicts,
		Interactive:            c.Interactive,
		LowConfidenceThreshold: c.LowConfidenceThreshold,
		MinConfidenceThreshold: c.MinConfidenceThreshold,
		MaxCandidates:          c.MaxCandidates,
		ConfirmedMappingsPath:  c.ConfirmedStoreDSN,
	}
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the environment variable as bool or a default.
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable as int or a default.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
