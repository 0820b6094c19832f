package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "https://api.coingecko.com/api/v3"
	DefaultAPITimeout    = 10 * time.Second
	DefaultMaxRetries    = 3
	DefaultRetryBackoff  = 1 * time.Second
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultPollInterval  = 60 * time.Second
	DefaultCycleTimeout  = 30 * time.Second
	DefaultPriceTTL      = 30 * time.Second
	DefaultHistoryTTL    = 60 * time.Second
	DefaultSweepInterval = 5 * time.Minute
	DefaultRetention     = 24 * time.Hour
	DefaultPruneInterval = 1 * time.Hour
	DefaultServerPort    = 8000
)

// DefaultPairs are the pairs tracked when the config names none.
var DefaultPairs = []string{
	"btc/usd",
	"eth/usd",
	"sol/usd",
	"etc/eur",
	"dot/usd",
	"ada/usd",
	"eth/btc",
	"bnt/btc",
}

func (c *TrackerConfig) applyDefaults() {
	if len(c.Pairs) == 0 {
		c.Pairs = append([]string(nil), DefaultPairs...)
	}

	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.CycleTimeout == 0 {
		c.Poller.CycleTimeout = DefaultCycleTimeout
	}

	// Cache defaults
	if c.Cache.PriceTTL == 0 {
		c.Cache.PriceTTL = DefaultPriceTTL
	}
	if c.Cache.HistoryTTL == 0 {
		c.Cache.HistoryTTL = DefaultHistoryTTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = DefaultSweepInterval
	}

	// Retention defaults
	if c.Retention.Window == 0 {
		c.Retention.Window = DefaultRetention
	}
	if c.Retention.PruneInterval == 0 {
		c.Retention.PruneInterval = DefaultPruneInterval
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
