package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarketPrice is the last known quote for one symbol. It is shared globally
// across users and accounts, keyed purely by symbol. FetchedAt is
// monotonically non-decreasing per symbol; prices are never negative.
type MarketPrice struct {
	Symbol        string          `json:"symbol"`
	Current       decimal.Decimal `json:"current"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// MarketDataError is a price-fetch failure for a specific symbol. Callers
// recover locally where possible: serve the stale cache entry, or skip the
// symbol in a batch.
type MarketDataError struct {
	Symbol string
	Err    error
}

func (e *MarketDataError) Error() string {
	return fmt.Sprintf("market data for %s: %v", e.Symbol, e.Err)
}

func (e *MarketDataError) Unwrap() error {
	return e.Err
}

// NewMarketDataError wraps an upstream quote failure for one symbol.
func NewMarketDataError(symbol string, err error) *MarketDataError {
	return &MarketDataError{Symbol: symbol, Err: err}
}
