package familykit

import (
	"fmt"
	"time"

	"github.com/fernandezvara/dbkit"
	"github.com/rs/zerolog"
)

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConnections    int           `mapstructure:"max_open_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
	ConnectionMaxIdleTime time.Duration `mapstructure:"connection_max_idle_time"`
}

// DefaultPoolConfig returns pool settings sized for a single API instance.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConnections:    25,
		MaxIdleConnections:    5,
		ConnectionMaxLifetime: 30 * time.Minute,
		ConnectionMaxIdleTime: 5 * time.Minute,
	}
}

// Validate checks that the pool settings are usable.
func (c PoolConfig) Validate() error {
	if c.MaxOpenConnections <= 0 {
		return fmt.Errorf("max open connections must be positive, got %d", c.MaxOpenConnections)
	}
	if c.MaxIdleConnections < 0 || c.MaxIdleConnections > c.MaxOpenConnections {
		return fmt.Errorf("max idle connections must be between 0 and %d, got %d",
			c.MaxOpenConnections, c.MaxIdleConnections)
	}
	if c.ConnectionMaxLifetime < 0 || c.ConnectionMaxIdleTime < 0 {
		return fmt.Errorf("connection lifetimes cannot be negative")
	}
	return nil
}

// ConfigurePool applies config to the connection pool of db.
func ConfigurePool(db *dbkit.DBKit, config PoolConfig, logger zerolog.Logger) error {
	if err := config.Validate(); err != nil {
		return err
	}

	bunDB := db.Bun()
	if bunDB == nil {
		return fmt.Errorf("database instance not available")
	}

	bunDB.SetMaxOpenConns(config.MaxOpenConnections)
	bunDB.SetMaxIdleConns(config.MaxIdleConnections)
	bunDB.SetConnMaxLifetime(config.ConnectionMaxLifetime)
	bunDB.SetConnMaxIdleTime(config.ConnectionMaxIdleTime)

	logger.Info().
		Int("max_open", config.MaxOpenConnections).
		Int("max_idle", config.MaxIdleConnections).
		Dur("max_lifetime", config.ConnectionMaxLifetime).
		Dur("max_idle_time", config.ConnectionMaxIdleTime).
		Msg("connection pool configured")

	return nil
}
