package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/pricetrack/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *TrackerConfig) Validate() error {
	if len(c.Pairs) == 0 {
		return errors.New("pairs must name at least one trading pair")
	}
	for _, s := range c.Pairs {
		if _, err := model.ParsePair(s); err != nil {
			return fmt.Errorf("pairs: %w", err)
		}
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be positive")
	}
	if c.Poller.CycleTimeout <= 0 {
		return errors.New("poller.cycle_timeout must be positive")
	}
	if c.Poller.CycleTimeout > c.Poller.Interval {
		return fmt.Errorf("poller.cycle_timeout (%s) cannot exceed poller.interval (%s)",
			c.Poller.CycleTimeout, c.Poller.Interval)
	}

	if c.Cache.PriceTTL <= 0 {
		return errors.New("cache.price_ttl must be positive")
	}
	if c.Cache.HistoryTTL <= 0 {
		return errors.New("cache.history_ttl must be positive")
	}

	if c.Retention.Window <= 0 {
		return errors.New("retention.window must be positive")
	}
	if c.Cache.HistoryTTL > c.Retention.Window {
		return fmt.Errorf("cache.history_ttl (%s) cannot exceed retention.window (%s)",
			c.Cache.HistoryTTL, c.Retention.Window)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
