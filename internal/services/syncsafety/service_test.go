package syncsafety

import (
	"context"
	"sync"
	"testing"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

type stubMarket struct{ open bool }

func (m stubMarket) GetPrice(_ context.Context, _ string) (*models.MarketPrice, error) {
	return nil, nil
}
func (m stubMarket) GetPrices(_ context.Context, _ []string) (map[string]*models.MarketPrice, error) {
	return nil, nil
}
func (m stubMarket) FetchAndCachePrice(_ context.Context, _ string) (*models.MarketPrice, error) {
	return nil, nil
}
func (m stubMarket) WarmupPrices(_ context.Context, _ []string) {}
func (m stubMarket) IsMarketOpen() bool                         { return m.open }

func newService(open bool) *Service {
	return NewService(stubMarket{open: open}, common.NewSilentLogger())
}

func TestAccountLock_TryTwiceThenRelease(t *testing.T) {
	s := newService(true)

	if !s.TryAccountLock("acc-1") {
		t.Fatal("first TryAccountLock should succeed")
	}
	if s.TryAccountLock("acc-1") {
		t.Fatal("second TryAccountLock without release should fail")
	}

	s.ReleaseAccountLock("acc-1")

	if !s.TryAccountLock("acc-1") {
		t.Fatal("TryAccountLock after release should succeed")
	}
}

func TestAccountLocks_IndependentPerAccount(t *testing.T) {
	s := newService(true)

	if !s.TryAccountLock("acc-1") {
		t.Fatal("acc-1 lock should succeed")
	}
	if !s.TryAccountLock("acc-2") {
		t.Fatal("acc-2 lock should be independent of acc-1")
	}
}

func TestGlobalLock_TrySemantics(t *testing.T) {
	s := newService(true)

	if !s.TryGlobalSyncLock() {
		t.Fatal("first TryGlobalSyncLock should succeed")
	}
	if s.TryGlobalSyncLock() {
		t.Fatal("second TryGlobalSyncLock should fail while held")
	}

	s.ReleaseGlobalSyncLock()

	if !s.TryGlobalSyncLock() {
		t.Fatal("TryGlobalSyncLock after release should succeed")
	}
}

func TestGlobalAndAccountLocks_Independent(t *testing.T) {
	s := newService(true)

	if !s.TryGlobalSyncLock() {
		t.Fatal("global lock should succeed")
	}
	if !s.TryAccountLock("acc-1") {
		t.Fatal("account lock must not be blocked by the global lock")
	}

	s.ReleaseGlobalSyncLock()
	s.ReleaseAccountLock("acc-1")

	if !s.TryAccountLock("acc-2") {
		t.Fatal("account lock should succeed with no global lock")
	}
	if !s.TryGlobalSyncLock() {
		t.Fatal("global lock must not be blocked by an account lock")
	}
}

func TestReleaseWithoutAcquire_NoOp(t *testing.T) {
	s := newService(true)

	// Must not panic or corrupt state
	s.ReleaseGlobalSyncLock()
	s.ReleaseAccountLock("never-locked")

	if !s.TryGlobalSyncLock() {
		t.Fatal("global lock should be acquirable after spurious release")
	}
	if !s.TryAccountLock("never-locked") {
		t.Fatal("account lock should be acquirable after spurious release")
	}
}

func TestAccountLock_ConcurrentAcquire_ExactlyOneWinner(t *testing.T) {
	s := newService(true)

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if s.TryAccountLock("acc-1") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if got := len(wins); got != 1 {
		t.Errorf("winners = %d, want exactly 1", got)
	}
}

func TestIsMarketOpen_Delegates(t *testing.T) {
	if !newService(true).IsMarketOpen() {
		t.Error("IsMarketOpen = false, want true")
	}
	if newService(false).IsMarketOpen() {
		t.Error("IsMarketOpen = true, want false")
	}
}
