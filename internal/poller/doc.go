// Package poller implements the price polling loop.
//
// The poller:
//   - Fetches a batch of prices for all tracked pairs every interval
//   - Appends each successfully fetched pair to the price store with
//     the cycle timestamp (single writer per pair)
//   - Logs and skips per-pair failures; a cycle never halts the loop
//   - Runs a separate retention loop that prunes observations older
//     than the configured window
//
// Each cycle is bounded by its own deadline and shielded by a recover
// at the cycle boundary, so neither a slow upstream nor a bug in one
// cycle can terminate the process.
package poller
