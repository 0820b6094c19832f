// Package source implements the rate-limited fetcher for the external
// price source (CoinGecko simple/price).
//
// The fetcher:
//   - Batches pairs sharing a quote currency into one HTTP call
//   - Retries rate-limit (429) and transient failures with exponential
//     backoff plus jitter, up to a bounded attempt count
//   - Returns partial results: a failed quote group or an unknown base
//     symbol marks only the affected pairs as failed, never the batch
//
// Callers must tolerate partial success; the poller persists whatever
// succeeded and logs the rest.
package source
