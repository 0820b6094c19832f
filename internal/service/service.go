package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/pricetrack/internal/cache"
	"github.com/rickgao/pricetrack/internal/model"
	"github.com/rickgao/pricetrack/internal/store"
	"github.com/rickgao/pricetrack/internal/volatility"
)

// ErrPairNotFound is returned when a pair is untracked or has no data.
// It is a clean not-found result for the caller, not an internal fault.
var ErrPairNotFound = errors.New("pair not found")

// History is one pair's retained price series plus its volatility
// standing among all tracked pairs.
type History struct {
	Pair       model.TradingPair
	Prices     []model.PriceObservation // ascending by timestamp
	Volatility model.VolatilityScore
}

// Service is the single entry point consumers use for price reads.
type Service interface {
	// CurrentPrice returns the pair's most recent observation.
	CurrentPrice(ctx context.Context, pair model.TradingPair) (model.PriceObservation, error)

	// History returns the pair's series over the ranking window together
	// with its volatility rank across all tracked pairs.
	History(ctx context.Context, pair model.TradingPair) (History, error)

	// TrackedPairs returns the pairs the service actively polls.
	TrackedPairs() []model.TradingPair
}

// Config holds service configuration.
type Config struct {
	PriceTTL   time.Duration // Cache TTL for current prices (default: 30s)
	HistoryTTL time.Duration // Cache TTL for history and ranks (default: 60s)
	Window     time.Duration // Ranking window, equal to retention (default: 24h)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PriceTTL:   30 * time.Second,
		HistoryTTL: 60 * time.Second,
		Window:     24 * time.Hour,
	}
}

// PriceService implements Service on top of a Store and a Cache.
type PriceService struct {
	cfg    Config
	store  store.Store
	cache  *cache.Cache
	pairs  []model.TradingPair
	logger *slog.Logger

	tracked map[model.TradingPair]bool
}

// New creates a PriceService for the given tracked pairs.
func New(cfg Config, st store.Store, c *cache.Cache, pairs []model.TradingPair, logger *slog.Logger) *PriceService {
	if logger == nil {
		logger = slog.Default()
	}

	tracked := make(map[model.TradingPair]bool, len(pairs))
	for _, p := range pairs {
		tracked[p] = true
	}

	return &PriceService{
		cfg:     cfg,
		store:   st,
		cache:   c,
		pairs:   pairs,
		logger:  logger,
		tracked: tracked,
	}
}

// CurrentPrice implements Service.
func (s *PriceService) CurrentPrice(ctx context.Context, pair model.TradingPair) (model.PriceObservation, error) {
	if !s.tracked[pair] {
		return model.PriceObservation{}, fmt.Errorf("%s: %w", pair, ErrPairNotFound)
	}

	return cache.Get(ctx, s.cache, "price:"+pair.String(), s.cfg.PriceTTL,
		func(ctx context.Context) (model.PriceObservation, error) {
			obs, err := s.store.Latest(ctx, pair)
			if errors.Is(err, store.ErrNotFound) {
				return model.PriceObservation{}, fmt.Errorf("%s: %w", pair, ErrPairNotFound)
			}
			return obs, err
		})
}

// History implements Service. The rank is recomputed from a snapshot
// of every tracked pair's series, so one cache entry per pair carries
// a consistent view of the whole ranking.
func (s *PriceService) History(ctx context.Context, pair model.TradingPair) (History, error) {
	if !s.tracked[pair] {
		return History{}, fmt.Errorf("%s: %w", pair, ErrPairNotFound)
	}

	return cache.Get(ctx, s.cache, "history:"+pair.String(), s.cfg.HistoryTTL,
		func(ctx context.Context) (History, error) {
			return s.computeHistory(ctx, pair)
		})
}

func (s *PriceService) computeHistory(ctx context.Context, pair model.TradingPair) (History, error) {
	since := time.Now().Add(-s.cfg.Window)

	prices, err := s.store.ReadSeries(ctx, pair, since)
	if err != nil {
		return History{}, err
	}
	if len(prices) == 0 {
		return History{}, fmt.Errorf("%s: %w", pair, ErrPairNotFound)
	}

	all := make(map[model.TradingPair][]model.PriceObservation, len(s.pairs))
	all[pair] = prices
	for _, other := range s.pairs {
		if other == pair {
			continue
		}
		series, err := s.store.ReadSeries(ctx, other, since)
		if err != nil {
			return History{}, err
		}
		all[other] = series
	}

	scores := volatility.Rank(all, time.Now().UTC())

	h := History{Pair: pair, Prices: prices}
	for _, sc := range scores {
		if sc.Pair == pair {
			h.Volatility = sc
			break
		}
	}
	return h, nil
}

// TrackedPairs implements Service.
func (s *PriceService) TrackedPairs() []model.TradingPair {
	out := make([]model.TradingPair, len(s.pairs))
	copy(out, s.pairs)
	return out
}
