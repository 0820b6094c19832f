// Package server is the thin HTTP layer over the price service. It
// contains routing, JSON encoding, and error-to-status mapping only;
// all behavior lives behind service.Service.
package server
