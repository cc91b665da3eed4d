package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MCP_MODE", "HOST", "PORT", "MCP_STATELESS",
		"AUTH_ENABLED", "AUTH_ISSUER_URL", "AUTH_AUDIENCE",
		"AUTH_VERIFY_TLS", "AUTH_RESOURCE_METADATA_URL",
		"CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ModeStdio, cfg.Mode)
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
		assert.False(t, cfg.Stateless)
		assert.False(t, cfg.AuthEnabled)
		assert.True(t, cfg.AuthVerifyTLS, "TLS verification must default to on")
		assert.Empty(t, cfg.CORSOrigins)
	})

	t.Run("reads everything from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MCP_MODE", "streamable-http")
		t.Setenv("HOST", "127.0.0.1")
		t.Setenv("PORT", "9090")
		t.Setenv("MCP_STATELESS", "true")
		t.Setenv("AUTH_ENABLED", "true")
		t.Setenv("AUTH_ISSUER_URL", "https://auth.example.com")
		t.Setenv("AUTH_AUDIENCE", "weather-api")
		t.Setenv("AUTH_VERIFY_TLS", "false")
		t.Setenv("AUTH_RESOURCE_METADATA_URL", "https://auth.example.com/.well-known/oauth-protected-resource")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ModeStreamableHTTP, cfg.Mode)
		assert.Equal(t, "127.0.0.1", cfg.Host)
		assert.Equal(t, 9090, cfg.Port)
		assert.True(t, cfg.Stateless)
		assert.True(t, cfg.AuthEnabled)
		assert.Equal(t, "https://auth.example.com", cfg.AuthIssuerURL)
		assert.Equal(t, "weather-api", cfg.AuthAudience)
		assert.False(t, cfg.AuthVerifyTLS)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	})

	t.Run("rejects auth without an issuer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AUTH_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_ISSUER_URL")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Mode: ModeStreamableHTTP, Host: "0.0.0.0", Port: 8080}
	}

	t.Run("accepts a sane config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects an unknown mode", func(t *testing.T) {
		cfg := valid()
		cfg.Mode = "websocket"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects out-of-range ports", func(t *testing.T) {
		for _, port := range []int{0, -1, 70000} {
			cfg := valid()
			cfg.Port = port
			assert.Error(t, cfg.Validate(), "port %d", port)
		}
	})
}
