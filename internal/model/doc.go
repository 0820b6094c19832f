// Package model defines the core domain types shared across components:
// trading pairs, price observations, and volatility scores.
//
// Types here are plain values with no behavior beyond parsing and
// formatting. The price store is the only component that persists them;
// everything else treats them as immutable snapshots.
package model
