// Package store implements the durable price store: append-only
// time-series storage of price observations keyed by (pair, timestamp).
//
// Two implementations are provided:
//   - Postgres: the production store, a single price_history table with
//     a composite (pair, ts) primary key so range reads per pair hit an
//     index. Reads are snapshot-consistent via MVCC.
//   - Memory: an in-process store for tests and -dev mode, with
//     copy-on-read snapshots so readers never observe a partial write.
//
// Both enforce the same write boundary: non-positive prices and
// out-of-order timestamps are rejected with a *ValidationError, never
// silently reordered.
package store
