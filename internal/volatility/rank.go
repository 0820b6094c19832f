// Package volatility ranks trading pairs by price dispersion. Ranking
// is a pure function of a series snapshot, which keeps it trivial to
// test and safe to recompute on every cache miss.
package volatility

import (
	"math"
	"sort"
	"time"

	"github.com/rickgao/pricetrack/internal/model"
)

// Rank computes a volatility score for every pair in series and
// returns them ordered by rank. Pairs are sorted descending by sample
// standard deviation, ties broken lexicographically by pair symbol, so
// the order is deterministic. Pairs with fewer than two observations
// score 0 and therefore sort last. Ranks are the 1-based positions
// after sorting: a permutation of 1..N with no gaps.
func Rank(series map[model.TradingPair][]model.PriceObservation, computedAt time.Time) []model.VolatilityScore {
	scores := make([]model.VolatilityScore, 0, len(series))
	for pair, obs := range series {
		scores = append(scores, model.VolatilityScore{
			Pair:       pair,
			StdDev:     stdDev(obs),
			ComputedAt: computedAt,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].StdDev != scores[j].StdDev {
			return scores[i].StdDev > scores[j].StdDev
		}
		return scores[i].Pair.String() < scores[j].Pair.String()
	})

	for i := range scores {
		scores[i].Rank = i + 1
	}

	return scores
}

// stdDev computes the sample standard deviation of the observed
// prices. Fewer than two observations yield 0.
func stdDev(obs []model.PriceObservation) float64 {
	n := len(obs)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, o := range obs {
		sum += o.Price
	}
	mean := sum / float64(n)

	var sq float64
	for _, o := range obs {
		d := o.Price - mean
		sq += d * d
	}

	return math.Sqrt(sq / float64(n-1))
}
