// Package config loads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds settings for the estimate inbox service.
type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	// InboxDB is the SQLite file holding received handoffs.
	InboxDB string
}

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset or malformed.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3080"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		InboxDB:      getEnv("TAKEOFF_INBOX_DB", "data/inbox.db"),
	}
}

// ReadTimeoutDuration returns ReadTimeout in seconds as a duration.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns WriteTimeout in seconds as a duration.
func (c *Config) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
