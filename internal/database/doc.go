// Package database provides the PostgreSQL connection pool backing the
// price store. The tracker keeps a single pool; pool sizing comes from
// configuration so the read path and the poller share connections
// without starving each other.
package database
