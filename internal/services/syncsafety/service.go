// Package syncsafety provides the mutual-exclusion layer for sync runs:
// one global full-sync lock plus per-account locks, all with try-semantics.
package syncsafety

import (
	"sync"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
)

// Service implements SyncSafetyService. All coordination state lives here;
// callers never share ad-hoc flags. Lock acquisition returns immediately;
// a failed try means "already syncing" and is a normal outcome, because
// syncs are triggered both by the scheduler and by user action and neither
// may block the other.
type Service struct {
	mu       sync.Mutex
	global   bool
	accounts map[string]bool

	market interfaces.MarketDataService
	logger *common.Logger
}

// NewService creates a new sync safety service.
func NewService(market interfaces.MarketDataService, logger *common.Logger) *Service {
	return &Service{
		accounts: make(map[string]bool),
		market:   market,
		logger:   logger,
	}
}

// TryGlobalSyncLock atomically marks a full all-accounts sync as running.
func (s *Service) TryGlobalSyncLock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.global {
		return false
	}
	s.global = true
	return true
}

// ReleaseGlobalSyncLock releases the global lock. Safe to call when the
// lock was never acquired, so cleanup paths can release unconditionally.
func (s *Service) ReleaseGlobalSyncLock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = false
}

// TryAccountLock acquires the lock for one account. The global lock does
// not grant account locks: a bulk sync still takes each account's lock so
// an interactive refresh racing against it backs off cleanly.
func (s *Service) TryAccountLock(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accounts[accountID] {
		return false
	}
	s.accounts[accountID] = true
	return true
}

// ReleaseAccountLock releases one account's lock. Idempotent.
func (s *Service) ReleaseAccountLock(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, accountID)
}

// IsMarketOpen gates scheduled syncs on exchange hours.
func (s *Service) IsMarketOpen() bool {
	return s.market.IsMarketOpen()
}

// Ensure Service implements SyncSafetyService
var _ interfaces.SyncSafetyService = (*Service)(nil)
