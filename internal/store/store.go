package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/pricetrack/internal/model"
)

// ErrNotFound is returned by Latest when a pair has no observations.
var ErrNotFound = errors.New("no observations for pair")

// ErrUnavailable wraps storage failures. Callers surface it as a
// service-unavailable condition rather than guessing at data state.
var ErrUnavailable = errors.New("store unavailable")

// ValidationError reports an observation rejected at the write
// boundary. Rejected observations are never persisted.
type ValidationError struct {
	Pair   model.TradingPair
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid observation for %s: %s", e.Pair, e.Reason)
}

// Store is the time-series price store. It supports one writer (the
// poller) and many concurrent readers; reads never block on the writer.
type Store interface {
	// Append durably writes one observation. It fails with a
	// *ValidationError if the price is not positive or the timestamp is
	// older than the pair's latest stored observation.
	Append(ctx context.Context, obs model.PriceObservation) error

	// ReadSeries returns the pair's observations with timestamp >= since,
	// ascending. An unknown pair or empty range yields an empty slice,
	// not an error.
	ReadSeries(ctx context.Context, pair model.TradingPair, since time.Time) ([]model.PriceObservation, error)

	// Latest returns the pair's most recent observation, or ErrNotFound.
	Latest(ctx context.Context, pair model.TradingPair) (model.PriceObservation, error)

	// Prune deletes observations older than the cutoff and reports how
	// many were removed. It is idempotent and safe to run concurrently
	// with appends.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// validate applies the write-boundary checks shared by all
// implementations. Ordering is checked separately per implementation.
func validate(obs model.PriceObservation) error {
	if obs.Pair.IsZero() {
		return &ValidationError{Pair: obs.Pair, Reason: "empty pair"}
	}
	if obs.Price <= 0 {
		return &ValidationError{Pair: obs.Pair, Reason: fmt.Sprintf("non-positive price %g", obs.Price)}
	}
	if obs.Timestamp.IsZero() {
		return &ValidationError{Pair: obs.Pair, Reason: "zero timestamp"}
	}
	return nil
}
