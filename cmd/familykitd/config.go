package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fernandezvara/familykit"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the daemon configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// HTTPConfig contains the HTTP listener settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	UserIDHeader    string        `yaml:"user_id_header" mapstructure:"user_id_header"`
	UserRoleHeader  string        `yaml:"user_role_header" mapstructure:"user_role_header"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL     string               `yaml:"url" mapstructure:"url"`
	Migrate bool                 `yaml:"migrate" mapstructure:"migrate"`
	Pool    familykit.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if c.HTTP.UserIDHeader == "" {
		c.HTTP.UserIDHeader = "X-User-ID"
	}
	if c.HTTP.UserRoleHeader == "" {
		c.HTTP.UserRoleHeader = "X-User-Role"
	}

	pool := familykit.DefaultPoolConfig()
	if c.Database.Pool.MaxOpenConnections == 0 {
		c.Database.Pool.MaxOpenConnections = pool.MaxOpenConnections
	}
	if c.Database.Pool.MaxIdleConnections == 0 {
		c.Database.Pool.MaxIdleConnections = pool.MaxIdleConnections
	}
	if c.Database.Pool.ConnectionMaxLifetime == 0 {
		c.Database.Pool.ConnectionMaxLifetime = pool.ConnectionMaxLifetime
	}
	if c.Database.Pool.ConnectionMaxIdleTime == 0 {
		c.Database.Pool.ConnectionMaxIdleTime = pool.ConnectionMaxIdleTime
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if err := c.Database.Pool.Validate(); err != nil {
		return fmt.Errorf("database.pool: %w", err)
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got: %s)", validLevels, c.Log.Level)
	}
	validFormats := []string{"json", "console"}
	if !slices.Contains(validFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v (got: %s)", validFormats, c.Log.Format)
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got: %s)", c.Metrics.Path)
	}
	return nil
}

// configKeys lists every key so that AutomaticEnv can resolve it on Unmarshal.
var configKeys = []string{
	"http.addr",
	"http.read_timeout",
	"http.write_timeout",
	"http.shutdown_timeout",
	"http.user_id_header",
	"http.user_role_header",
	"database.url",
	"database.migrate",
	"database.pool.max_open_connections",
	"database.pool.max_idle_connections",
	"database.pool.connection_max_lifetime",
	"database.pool.connection_max_idle_time",
	"log.level",
	"log.format",
	"metrics.enabled",
	"metrics.path",
}

// LoadConfig reads configFile (optional), then envFile (optional), then the
// environment. Environment variables use the FAMILYKIT prefix with dots
// replaced by underscores, e.g. FAMILYKIT_DATABASE_URL.
func LoadConfig(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix("FAMILYKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	v.SetDefault("database.migrate", true)
	v.SetDefault("metrics.enabled", true)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
