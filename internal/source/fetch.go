package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rickgao/pricetrack/internal/model"
)

// coingeckoIDs maps supported base symbols to CoinGecko asset IDs.
var coingeckoIDs = map[string]string{
	"ada": "cardano",
	"bnt": "bancor",
	"btc": "bitcoin",
	"dot": "polkadot",
	"etc": "ethereum-classic",
	"eth": "ethereum",
	"sol": "solana",
}

// CoinGeckoID resolves a base currency symbol to its CoinGecko asset
// ID. Unknown symbols are a per-pair, non-retryable failure.
func CoinGeckoID(symbol string) (string, error) {
	id, ok := coingeckoIDs[strings.ToLower(symbol)]
	if !ok {
		return "", fmt.Errorf("unsupported currency %q", symbol)
	}
	return id, nil
}

// Result is the outcome of one batch fetch. Prices holds the pairs
// that succeeded; Failed maps each remaining pair to the error that
// excluded it. Both may be non-empty at once.
type Result struct {
	Prices map[model.TradingPair]float64
	Failed map[model.TradingPair]error
}

// FetchBatch fetches current prices for the given pairs, issuing one
// simple/price call per quote currency. Group-level failures (after
// retry exhaustion) and per-pair problems land in Result.Failed; the
// returned error is non-nil only when the whole batch was impossible.
func (c *Client) FetchBatch(ctx context.Context, pairs []model.TradingPair) (*Result, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs to fetch")
	}

	res := &Result{
		Prices: make(map[model.TradingPair]float64, len(pairs)),
		Failed: make(map[model.TradingPair]error),
	}

	for quote, group := range groupByQuote(pairs) {
		ids := make([]string, 0, len(group))
		idFor := make(map[model.TradingPair]string, len(group))
		for _, pair := range group {
			id, err := CoinGeckoID(pair.Base)
			if err != nil {
				res.Failed[pair] = err
				continue
			}
			ids = append(ids, id)
			idFor[pair] = id
		}
		if len(ids) == 0 {
			continue
		}

		query := url.Values{}
		query.Set("ids", strings.Join(ids, ","))
		query.Set("vs_currencies", quote)

		// asset id -> quote currency -> price
		var payload map[string]map[string]float64
		if err := c.get(ctx, "/simple/price", query, &payload); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("quote group fetch failed",
				"quote", quote,
				"pairs", len(group),
				"err", err,
			)
			for _, pair := range group {
				if _, known := idFor[pair]; known {
					res.Failed[pair] = err
				}
			}
			continue
		}

		for pair, id := range idFor {
			price, ok := payload[id][quote]
			if !ok {
				res.Failed[pair] = fmt.Errorf("no price in response for %s", pair)
				continue
			}
			if price <= 0 {
				res.Failed[pair] = fmt.Errorf("invalid price %g for %s", price, pair)
				continue
			}
			res.Prices[pair] = price
		}
	}

	return res, nil
}

// groupByQuote buckets pairs by quote currency, the unit the upstream
// batches on. Groups are built in deterministic order for stable logs.
func groupByQuote(pairs []model.TradingPair) map[string][]model.TradingPair {
	groups := make(map[string][]model.TradingPair)
	for _, pair := range pairs {
		groups[pair.Quote] = append(groups[pair.Quote], pair)
	}
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].String() < group[j].String()
		})
	}
	return groups
}
