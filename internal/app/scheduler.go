package app

import (
	"context"
	"errors"
	"time"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// startSyncScheduler runs a full sync of all active accounts on a fixed
// interval. Ticks outside exchange hours are skipped: positions cannot
// change while the market is closed, so a sync would only burn broker rate
// limits. Manual refreshes bypass this gate entirely.
func startSyncScheduler(ctx context.Context, syncService interfaces.PortfolioSyncService, safety interfaces.SyncSafetyService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Sync scheduler: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Sync scheduler: stopped")
			return
		case <-ticker.C:
			runScheduledSync(ctx, syncService, safety, logger)
		}
	}
}

func runScheduledSync(ctx context.Context, syncService interfaces.PortfolioSyncService, safety interfaces.SyncSafetyService, logger *common.Logger) {
	if !safety.IsMarketOpen() {
		logger.Debug().Msg("Sync scheduler: market closed, tick skipped")
		return
	}

	start := time.Now()
	logs, err := syncService.SyncAllActiveAccounts(ctx)
	if errors.Is(err, models.ErrSyncInProgress) {
		// Previous run still in flight; the next tick will catch up.
		return
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Sync scheduler: full sync failed")
		return
	}

	logger.Info().
		Int("accounts", len(logs)).
		Dur("elapsed", time.Since(start)).
		Msg("Sync scheduler: full sync complete")
}
