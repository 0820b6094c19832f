package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/pricetrack/internal/model"
	"github.com/rickgao/pricetrack/internal/source"
	"github.com/rickgao/pricetrack/internal/store"
)

// Fetcher provides batched prices for trading pairs.
type Fetcher interface {
	FetchBatch(ctx context.Context, pairs []model.TradingPair) (*source.Result, error)
}

// Config holds poller configuration.
type Config struct {
	Interval      time.Duration // Poll interval (default: 60s)
	CycleTimeout  time.Duration // Deadline per cycle (default: 30s)
	Retention     time.Duration // Observation retention window (default: 24h)
	PruneInterval time.Duration // How often to prune (default: 1h)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      60 * time.Second,
		CycleTimeout:  30 * time.Second,
		Retention:     24 * time.Hour,
		PruneInterval: time.Hour,
	}
}

// Poller periodically fetches prices and writes them to the store. It
// is the sole writer, which serializes appends per pair.
type Poller struct {
	cfg     Config
	fetcher Fetcher
	store   store.Store
	pairs   []model.TradingPair
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, fetcher Fetcher, st store.Store, pairs []model.TradingPair, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		store:   st,
		pairs:   pairs,
		logger:  logger,
	}
}

// Start begins the polling and retention loops.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(2)
	go p.run()
	go p.pruneLoop()

	p.logger.Info("price poller started",
		"interval", p.cfg.Interval,
		"pairs", len(p.pairs),
		"retention", p.cfg.Retention,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("price poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.cycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.cycle()
		}
	}
}

// cycle runs one fetch-and-store pass: Idle -> Fetching -> Writing ->
// Idle. Every failure mode ends at the cycle boundary; the loop always
// reaches the next tick.
func (p *Poller) cycle() {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("poll cycle panicked", "panic", r)
		}
	}()

	cycleID := uuid.NewString()
	start := time.Now()

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.CycleTimeout)
	defer cancel()

	res, err := p.fetcher.FetchBatch(ctx, p.pairs)
	if err != nil {
		// Writes already committed in an abandoned cycle stand; the next
		// tick starts fresh.
		p.logger.Warn("poll cycle fetch failed", "cycle", cycleID, "err", err)
		return
	}

	now := time.Now().UTC()
	var written int
	for pair, price := range res.Prices {
		obs := model.PriceObservation{Pair: pair, Timestamp: now, Price: price}
		if err := p.store.Append(ctx, obs); err != nil {
			p.logger.Warn("append failed",
				"cycle", cycleID,
				"pair", pair.String(),
				"err", err,
			)
			continue
		}
		written++
	}

	for pair, ferr := range res.Failed {
		p.logger.Warn("pair fetch failed",
			"cycle", cycleID,
			"pair", pair.String(),
			"err", ferr,
		)
	}

	p.logger.Info("poll cycle complete",
		"cycle", cycleID,
		"pairs", len(p.pairs),
		"written", written,
		"failed", len(res.Failed),
		"duration", time.Since(start),
	)
}

// pruneLoop enforces the retention window on a fixed schedule.
func (p *Poller) pruneLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *Poller) prune() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.CycleTimeout)
	defer cancel()

	cutoff := time.Now().Add(-p.cfg.Retention)
	removed, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		p.logger.Warn("prune failed", "cutoff", cutoff, "err", err)
		return
	}
	if removed > 0 {
		p.logger.Info("pruned observations", "removed", removed, "cutoff", cutoff)
	}
}
