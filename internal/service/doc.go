// Package service exposes the read façade over the price store. All
// front-ends (HTTP API, dashboards) depend on the Service interface
// and nothing below it.
//
// Reads go through the cache layer: current prices and history/rank
// results are memoized per pair with short TTLs, trading a bounded
// staleness window for reduced load on the store. The service performs
// no writes; the poller owns the write path.
package service
