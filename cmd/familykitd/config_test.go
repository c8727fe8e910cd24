package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fernandezvara/familykit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("FAMILYKIT_DATABASE_URL", "postgres://localhost/familykit")
	t.Setenv("FAMILYKIT_HTTP_ADDR", ":9090")
	t.Setenv("FAMILYKIT_HTTP_READ_TIMEOUT", "3s")
	t.Setenv("FAMILYKIT_LOG_LEVEL", "debug")
	t.Setenv("FAMILYKIT_DATABASE_POOL_MAX_OPEN_CONNECTIONS", "50")

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/familykit", cfg.Database.URL)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Database.Pool.MaxOpenConnections)
	assert.Equal(t, familykit.DefaultPoolConfig().MaxIdleConnections, cfg.Database.Pool.MaxIdleConnections)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FAMILYKIT_DATABASE_URL", "postgres://localhost/familykit")

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "X-User-ID", cfg.HTTP.UserIDHeader)
	assert.Equal(t, "X-User-Role", cfg.HTTP.UserRoleHeader)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, familykit.DefaultPoolConfig(), cfg.Database.Pool)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "familykitd.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
http:
  addr: ":7070"
  user_id_header: "X-Auth-User"
database:
  url: "postgres://file/familykit"
  migrate: false
log:
  format: console
metrics:
  enabled: false
`), 0o600))

	cfg, err := LoadConfig(file, "")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "X-Auth-User", cfg.HTTP.UserIDHeader)
	assert.Equal(t, "postgres://file/familykit", cfg.Database.URL)
	assert.False(t, cfg.Database.Migrate)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("FAMILYKIT_HTTP_ADDR", ":6060")
		cfg, err := LoadConfig(file, "")
		require.NoError(t, err)
		assert.Equal(t, ":6060", cfg.HTTP.Addr)
	})
}

func TestLoadConfigEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FAMILYKIT_DATABASE_URL=postgres://dotenv/familykit\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FAMILYKIT_DATABASE_URL") })

	cfg, err := LoadConfig("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "postgres://dotenv/familykit", cfg.Database.URL)
}

func TestLoadConfigMissingFiles(t *testing.T) {
	t.Setenv("FAMILYKIT_DATABASE_URL", "postgres://localhost/familykit")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	// A missing env file is not an error.
	_, err = LoadConfig("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Database: DatabaseConfig{URL: "postgres://localhost/familykit"}}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing url", func(c *Config) { c.Database.URL = "" }, "database.url is required"},
		{"bad pool", func(c *Config) { c.Database.Pool.MaxIdleConnections = 100 }, "database.pool"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
