package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionCategory classifies a holding.
type PositionCategory string

const (
	PositionEquity     PositionCategory = "equity"
	PositionFnO        PositionCategory = "fno"
	PositionMutualFund PositionCategory = "mutual_fund"
)

// CachedPosition is one holding snapshot persisted after a broker sync.
// Quantity carries the full signed position with broker lot sizes already
// folded in, and BuyPrice is per unit of that quantity, so the computation
// layer never needs lot metadata. The position set for an account is
// replaced wholesale on every successful sync.
type CachedPosition struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	AccountID string           `json:"account_id"`
	Broker    BrokerType       `json:"broker"`
	Symbol    string           `json:"symbol"`
	Quantity  decimal.Decimal  `json:"quantity"`
	BuyPrice  decimal.Decimal  `json:"buy_price"`
	Category  PositionCategory `json:"category"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// RawPosition is a holding as returned by a broker client, before
// normalization. Lots is the broker lot multiplier (0 or 1 means the
// quantity is already in units).
type RawPosition struct {
	Symbol   string           `json:"symbol"`
	Quantity decimal.Decimal  `json:"quantity"`
	Lots     int64            `json:"lots"`
	BuyPrice decimal.Decimal  `json:"buy_price"`
	Category PositionCategory `json:"category"`
}

// Units returns the full signed quantity with the lot multiplier applied.
func (r RawPosition) Units() decimal.Decimal {
	if r.Lots > 1 {
		return r.Quantity.Mul(decimal.NewFromInt(r.Lots))
	}
	return r.Quantity
}

// FnoPositionView is a derivative position with live P&L figures,
// rounded to two fractional digits.
type FnoPositionView struct {
	Symbol        string          `json:"symbol"`
	Broker        BrokerType      `json:"broker"`
	Quantity      decimal.Decimal `json:"quantity"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	MTM           decimal.Decimal `json:"mtm"`
	DayGain       decimal.Decimal `json:"day_gain"`
}

// PortfolioSummary is a read-only projection over a user's cached
// positions priced at the latest cached quotes.
type PortfolioSummary struct {
	UserID          string                               `json:"user_id"`
	TotalValue      decimal.Decimal                      `json:"total_value"`
	TotalCost       decimal.Decimal                      `json:"total_cost"`
	TotalGain       decimal.Decimal                      `json:"total_gain"`
	ByCategory      map[PositionCategory]CategorySummary `json:"by_category"`
	Positions       int                                  `json:"positions"`
	UnpricedSymbols []string                             `json:"unpriced_symbols,omitempty"`
	AsOf            time.Time                            `json:"as_of"`
}

// CategorySummary aggregates value and cost for one position category.
type CategorySummary struct {
	Value decimal.Decimal `json:"value"`
	Cost  decimal.Decimal `json:"cost"`
	Gain  decimal.Decimal `json:"gain"`
	Count int             `json:"count"`
}
