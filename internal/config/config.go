package config

import (
	"time"

	"github.com/rickgao/pricetrack/internal/model"
)

// TrackerConfig is the root configuration for a tracker instance.
type TrackerConfig struct {
	Pairs     []string        `yaml:"pairs"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Poller    PollerConfig    `yaml:"poller"`
	Cache     CacheConfig     `yaml:"cache"`
	Retention RetentionConfig `yaml:"retention"`
	Server    ServerConfig    `yaml:"server"`
}

// APIConfig holds price source (CoinGecko) settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"` // demo key; empty = unauthenticated
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DatabaseConfig holds the PostgreSQL connection for price history.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig holds price polling settings.
type PollerConfig struct {
	Interval     time.Duration `yaml:"interval"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`
}

// CacheConfig holds read-cache TTLs.
type CacheConfig struct {
	PriceTTL      time.Duration `yaml:"price_ttl"`
	HistoryTTL    time.Duration `yaml:"history_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// RetentionConfig bounds stored history. The volatility ranking window
// equals the retention window; there is deliberately no separate knob.
type RetentionConfig struct {
	Window        time.Duration `yaml:"window"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// TrackedPairs parses the configured pair strings. Call after
// Validate; malformed entries fail there first.
func (c *TrackerConfig) TrackedPairs() ([]model.TradingPair, error) {
	pairs := make([]model.TradingPair, 0, len(c.Pairs))
	for _, s := range c.Pairs {
		p, err := model.ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
