package model

import "time"

// PriceObservation is a single sampled price for a pair. Observations
// are immutable once written; within a pair they are ordered by
// timestamp, non-decreasing as inserted.
type PriceObservation struct {
	Pair      TradingPair
	Timestamp time.Time // UTC
	Price     float64   // strictly positive
}

// VolatilityScore ranks one pair by price dispersion over the ranking
// window. Rank 1 is the highest standard deviation. Scores are derived
// fresh from a series snapshot, never mutated incrementally.
type VolatilityScore struct {
	Pair       TradingPair
	StdDev     float64 // non-negative; 0 for fewer than 2 observations
	Rank       int     // 1-based position after sorting
	ComputedAt time.Time
}
