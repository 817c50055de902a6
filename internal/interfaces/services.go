// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/folioworks/folio/internal/models"
)

// MarketDataService fronts the shared price cache. On a miss or stale entry
// it fetches from the upstream provider, updates the cache, and returns the
// result.
type MarketDataService interface {
	// GetPrice returns the cached price if still fresh, otherwise fetches
	// and caches a new one. A failed refresh falls back to the stale entry
	// when one survives; the error is returned only on a true miss.
	GetPrice(ctx context.Context, symbol string) (*models.MarketPrice, error)

	// GetPrices resolves each symbol independently; symbols that cannot be
	// priced are omitted from the result map rather than aborting the batch.
	GetPrices(ctx context.Context, symbols []string) (map[string]*models.MarketPrice, error)

	// FetchAndCachePrice unconditionally calls the upstream provider and
	// overwrites the cache entry. On failure the stale entry, if any, is
	// left in place.
	FetchAndCachePrice(ctx context.Context, symbol string) (*models.MarketPrice, error)

	// WarmupPrices bulk pre-fetches prices before a sync run. Best effort:
	// individual failures are logged, never propagated.
	WarmupPrices(ctx context.Context, symbols []string)

	// IsMarketOpen reports whether the exchange is currently trading.
	IsMarketOpen() bool
}

// SyncSafetyService is the mutual-exclusion layer for sync runs. All lock
// operations are try-semantics: they return immediately and never queue
// waiters. A failed acquire means "already syncing" and is a normal outcome.
type SyncSafetyService interface {
	// TryGlobalSyncLock atomically marks a full all-accounts sync as
	// running. Returns false if one is already in flight.
	TryGlobalSyncLock() bool

	// ReleaseGlobalSyncLock is idempotent; releasing an unheld lock is a
	// no-op so cleanup paths can release unconditionally.
	ReleaseGlobalSyncLock()

	// TryAccountLock acquires the per-account lock. Holding the global lock
	// does not implicitly grant account locks.
	TryAccountLock(accountID string) bool

	// ReleaseAccountLock is idempotent per account.
	ReleaseAccountLock(accountID string)

	// IsMarketOpen gates scheduled (non-interactive) syncs.
	IsMarketOpen() bool
}

// PortfolioSyncService orchestrates broker syncs for accounts, users, and
// the whole active population.
type PortfolioSyncService interface {
	// SyncBrokerAccount syncs one account behind its account lock. Returns
	// models.ErrSyncInProgress when the lock is busy, or a *models.BrokerError
	// on upstream failure.
	SyncBrokerAccount(ctx context.Context, account *models.BrokerAccount) (*models.SyncLog, error)

	// SyncUser syncs all of a user's active accounts. Per-account failures
	// are recorded in their own SyncLogs and do not abort siblings.
	SyncUser(ctx context.Context, userID string) ([]*models.SyncLog, error)

	// SyncAllActiveAccounts runs a full sync behind the global lock.
	// Returns models.ErrSyncInProgress without any broker call when a full
	// sync is already running.
	SyncAllActiveAccounts(ctx context.Context) ([]*models.SyncLog, error)

	// TriggerManualRefreshForUser is the interactive variant of SyncUser.
	// It bypasses the market-hours gate and reports per-account outcomes
	// instead of raising on partial failure.
	TriggerManualRefreshForUser(ctx context.Context, userID string) (*models.ManualRefreshResponse, error)
}

// FnoPositionService derives point-in-time P&L for derivative positions
// from cached positions plus live prices. Pure, read-only, no locks held.
type FnoPositionService interface {
	// GetFnoPositionsForUser returns the user's F&O positions with
	// mark-to-market and day-gain figures. Positions whose symbol has no
	// resolvable price are excluded from the result.
	GetFnoPositionsForUser(ctx context.Context, userID string) ([]models.FnoPositionView, error)
}

// SummaryService assembles read-only portfolio projections for the
// presentation layer.
type SummaryService interface {
	GetPortfolioSummary(ctx context.Context, userID string) (*models.PortfolioSummary, error)
}
