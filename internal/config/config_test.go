package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0", Port: 8080,
			ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second,
			ShutdownTimeout: 15 * time.Second, MaxUploadBytes: 16 << 20,
		},
		Database:  DatabaseConfig{URI: "mongodb://localhost:27017", Database: "lungscan", ConnectTimeout: 10 * time.Second},
		Model:     ModelConfig{Dir: "./models"},
		Auth:      AuthConfig{Secret: "0123456789abcdef", TokenTTL: 24 * time.Hour},
		Uploads:   UploadsConfig{Dir: "./uploads"},
		RateLimit: RateLimitConfig{Enabled: true, RPS: 20, Burst: 40},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LUNGSCAN_AUTH_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "lungscan", cfg.Database.Database)
	assert.Equal(t, "./models", cfg.Model.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LUNGSCAN_AUTH_SECRET", "0123456789abcdef")
	t.Setenv("LUNGSCAN_SERVER_PORT", "9090")
	t.Setenv("LUNGSCAN_DATABASE_DATABASE", "lungscan_test")
	t.Setenv("LUNGSCAN_MODEL_DIR", "/opt/models")
	t.Setenv("LUNGSCAN_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "lungscan_test", cfg.Database.Database)
	assert.Equal(t, "/opt/models", cfg.Model.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsMissingSecret(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"missing database uri", func(c *Config) { c.Database.URI = "" }},
		{"missing database name", func(c *Config) { c.Database.Database = "" }},
		{"missing model dir", func(c *Config) { c.Model.Dir = "" }},
		{"weak auth secret", func(c *Config) { c.Auth.Secret = "short" }},
		{"missing uploads dir", func(c *Config) { c.Uploads.Dir = "" }},
		{"rate limit without rate", func(c *Config) { c.RateLimit.RPS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, validConfig().Validate())
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}
