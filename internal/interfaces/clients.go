// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"time"

	"github.com/folioworks/folio/internal/models"
)

// BrokerClient performs upstream calls against one broker for one linked
// account. Implementations map authentication failures to
// *models.BrokerError with the token-expiry tag set so callers can
// distinguish "re-authenticate" from transient faults.
type BrokerClient interface {
	// FetchPositions retrieves the account's current holdings.
	FetchPositions(ctx context.Context, account *models.BrokerAccount) ([]models.RawPosition, error)
}

// QuoteProvider is the upstream market-data vendor boundary.
type QuoteProvider interface {
	// FetchQuote retrieves the live quote for one symbol. Failures are
	// returned as *models.MarketDataError carrying the symbol.
	FetchQuote(ctx context.Context, symbol string) (*models.MarketPrice, error)
}

// ExchangeCalendar answers whether the exchange is trading at a given time.
type ExchangeCalendar interface {
	IsOpenAt(t time.Time) bool
}
