// Package config loads the server configuration from the environment.
// Command-line flags in cmd/weather-server override individual fields.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Transport modes.
const (
	ModeStdio          = "stdio"
	ModeSSE            = "sse"
	ModeStreamableHTTP = "streamable-http"
)

// Config is the full configuration surface.
type Config struct {
	Mode      string
	Host      string
	Port      int
	Stateless bool

	AuthEnabled         bool
	AuthIssuerURL       string
	AuthAudience        string
	AuthVerifyTLS       bool
	ResourceMetadataURL string

	CORSOrigins []string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Mode:          getEnvDefault("MCP_MODE", ModeStdio),
		Host:          getEnvDefault("HOST", "0.0.0.0"),
		Port:          getEnvInt("PORT", 8080),
		Stateless:     getEnvBool("MCP_STATELESS", false),
		AuthEnabled:   getEnvBool("AUTH_ENABLED", false),
		AuthIssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		AuthAudience:  os.Getenv("AUTH_AUDIENCE"),
		// TLS verification stays on unless explicitly disabled for local
		// development.
		AuthVerifyTLS:       getEnvBool("AUTH_VERIFY_TLS", true),
		ResourceMetadataURL: os.Getenv("AUTH_RESOURCE_METADATA_URL"),
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configurations that would otherwise break at first
// request.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStdio, ModeSSE, ModeStreamableHTTP:
	default:
		return fmt.Errorf("unknown mode: %s (expected %s, %s or %s)", c.Mode, ModeStdio, ModeSSE, ModeStreamableHTTP)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.AuthEnabled && c.AuthIssuerURL == "" {
		return fmt.Errorf("AUTH_ISSUER_URL is required when AUTH_ENABLED=true")
	}
	return nil
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
