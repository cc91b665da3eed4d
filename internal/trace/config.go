// Package trace records HTTP request activity to SQLite for offline
// inspection. Disabled by default; enabling it costs one insert per request.
package trace

import (
	"os"
	"strconv"
)

// Config holds runtime configuration for the trace subsystem.
type Config struct {
	Enabled    bool   // Enable/disable tracing
	Storage    string // "memory" or "file"
	Path       string // Database path for file storage
	RetentionH int    // Auto-cleanup hours
}

// LoadConfig reads trace configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("MCP_TRACE", false) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:    true,
		Storage:    getEnvDefault("MCP_TRACE_STORAGE", "memory"),
		Path:       getEnvDefault("MCP_TRACE_PATH", "./trace.db"),
		RetentionH: getEnvInt("MCP_TRACE_RETENTION_H", 24),
	}
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
