// Package marketdata provides the shared market price cache and the
// cache-aside service that fronts the upstream quote provider.
package marketdata

import (
	"sync"

	"github.com/folioworks/folio/internal/models"
)

// PriceCache holds the last known price per symbol. It is shared by every
// sync run and every presentation read, so access is guarded by a RWMutex
// and entries are copied on the way out.
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]models.MarketPrice
}

// NewPriceCache creates an empty price cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{
		prices: make(map[string]models.MarketPrice),
	}
}

// Get returns a copy of the cached price for symbol, if present.
func (c *PriceCache) Get(symbol string) (models.MarketPrice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.prices[symbol]
	return p, ok
}

// Put stores a price. Entries with negative prices are rejected, and an
// entry older than the one already cached never overwrites it, keeping the
// per-symbol fetch timestamp monotonically non-decreasing.
func (c *PriceCache) Put(price models.MarketPrice) bool {
	if price.Current.IsNegative() || price.PreviousClose.IsNegative() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.prices[price.Symbol]; ok && price.FetchedAt.Before(existing.FetchedAt) {
		return false
	}
	c.prices[price.Symbol] = price
	return true
}

// Len returns the number of cached symbols.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prices)
}
