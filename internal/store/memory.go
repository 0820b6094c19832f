package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rickgao/pricetrack/internal/model"
)

// Memory is an in-process Store. It backs tests and -dev mode runs
// without a database. Series are kept sorted per pair; reads copy out
// under a read lock so callers hold a consistent snapshot.
type Memory struct {
	mu     sync.RWMutex
	series map[model.TradingPair][]model.PriceObservation
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		series: make(map[model.TradingPair][]model.PriceObservation),
	}
}

// Append implements Store. Timestamps per pair must be non-decreasing.
func (m *Memory) Append(_ context.Context, obs model.PriceObservation) error {
	if err := validate(obs); err != nil {
		return err
	}
	obs.Timestamp = obs.Timestamp.UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.series[obs.Pair]
	if n := len(s); n > 0 && obs.Timestamp.Before(s[n-1].Timestamp) {
		return &ValidationError{
			Pair:   obs.Pair,
			Reason: "timestamp older than latest stored observation",
		}
	}

	m.series[obs.Pair] = append(s, obs)
	return nil
}

// ReadSeries implements Store.
func (m *Memory) ReadSeries(_ context.Context, pair model.TradingPair, since time.Time) ([]model.PriceObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.series[pair]
	i := sort.Search(len(s), func(i int) bool {
		return !s[i].Timestamp.Before(since)
	})

	out := make([]model.PriceObservation, len(s)-i)
	copy(out, s[i:])
	return out, nil
}

// Latest implements Store.
func (m *Memory) Latest(_ context.Context, pair model.TradingPair) (model.PriceObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.series[pair]
	if len(s) == 0 {
		return model.PriceObservation{}, ErrNotFound
	}
	return s[len(s)-1], nil
}

// Prune implements Store.
func (m *Memory) Prune(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for pair, s := range m.series {
		i := sort.Search(len(s), func(i int) bool {
			return !s[i].Timestamp.Before(olderThan)
		})
		if i == 0 {
			continue
		}
		removed += int64(i)
		if i == len(s) {
			delete(m.series, pair)
			continue
		}
		m.series[pair] = append([]model.PriceObservation(nil), s[i:]...)
	}
	return removed, nil
}
