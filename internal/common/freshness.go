// Package common provides shared utilities for Folio
package common

import "time"

// Default freshness TTLs for cached market prices. While the exchange is
// open, prices move and the cache window is tight; outside trading hours a
// quote cannot change, so the window is long.
const (
	DefaultFreshnessOpen   = 5 * time.Second
	DefaultFreshnessClosed = 12 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}

// IsFreshAt is IsFresh evaluated against an explicit reference time, for
// callers with an injectable clock.
func IsFreshAt(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
