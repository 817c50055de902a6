// Package portfoliosync orchestrates broker position syncs: locking,
// upstream calls, wholesale position replacement, and the audit trail.
package portfoliosync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// Service implements PortfolioSyncService.
type Service struct {
	storage interfaces.StorageManager
	brokers map[models.BrokerType]interfaces.BrokerClient
	safety  interfaces.SyncSafetyService
	market  interfaces.MarketDataService
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio sync service. brokers maps each
// supported broker tag to its client.
func NewService(
	storage interfaces.StorageManager,
	brokers map[models.BrokerType]interfaces.BrokerClient,
	safety interfaces.SyncSafetyService,
	market interfaces.MarketDataService,
	logger *common.Logger,
) *Service {
	return &Service{
		storage: storage,
		brokers: brokers,
		safety:  safety,
		market:  market,
		logger:  logger,
		now:     time.Now,
	}
}

// SyncBrokerAccount syncs one account behind its account lock. A busy lock
// returns models.ErrSyncInProgress without touching the broker; the caller
// reports it as "skipped", not "failed". The lock is released on every exit
// path, including panics inside the broker call.
func (s *Service) SyncBrokerAccount(ctx context.Context, account *models.BrokerAccount) (*models.SyncLog, error) {
	if !s.safety.TryAccountLock(account.ID) {
		s.logger.Debug().Str("account", account.ID).Msg("Account sync skipped, lock busy")
		return nil, models.ErrSyncInProgress
	}
	defer s.safety.ReleaseAccountLock(account.ID)

	return s.runFullSyncForAccount(ctx, account)
}

// SyncUser syncs all of a user's active accounts. Each account's outcome is
// independent: one failure never aborts the siblings, and each attempt gets
// its own SyncLog.
func (s *Service) SyncUser(ctx context.Context, userID string) ([]*models.SyncLog, error) {
	accounts, err := s.storage.AccountStore().ListAccountsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}

	logs := make([]*models.SyncLog, 0, len(accounts))
	for _, account := range accounts {
		if !account.Active {
			continue
		}
		log, err := s.SyncBrokerAccount(ctx, account)
		if errors.Is(err, models.ErrSyncInProgress) {
			continue
		}
		if err != nil {
			s.logger.Warn().Str("account", account.ID).Err(err).Msg("Account sync failed")
		}
		if log != nil {
			logs = append(logs, log)
		}
	}

	s.logger.Info().Str("user", userID).Int("accounts", len(logs)).Msg("User sync complete")
	return logs, nil
}

// SyncAllActiveAccounts runs a full sync of every active account behind the
// global lock. When a full sync is already running it returns
// models.ErrSyncInProgress immediately, with zero broker calls. Each
// account still takes its own lock, so an interactive refresh racing
// against the bulk sync backs off per account.
func (s *Service) SyncAllActiveAccounts(ctx context.Context) ([]*models.SyncLog, error) {
	if !s.safety.TryGlobalSyncLock() {
		s.logger.Info().Msg("Full sync skipped, already running")
		return nil, models.ErrSyncInProgress
	}
	defer s.safety.ReleaseGlobalSyncLock()

	accounts, err := s.storage.AccountStore().ListActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	start := s.now()
	logs := make([]*models.SyncLog, 0, len(accounts))
	failed := 0
	for _, account := range accounts {
		log, err := s.SyncBrokerAccount(ctx, account)
		if errors.Is(err, models.ErrSyncInProgress) {
			continue
		}
		if err != nil {
			failed++
		}
		if log != nil {
			logs = append(logs, log)
		}
	}

	s.logger.Info().
		Int("accounts", len(accounts)).
		Int("synced", len(logs)-failed).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Full sync complete")

	return logs, nil
}

// TriggerManualRefreshForUser is the interactive variant of SyncUser. It
// bypasses the market-hours gate and aggregates per-account outcomes into a
// response instead of raising on partial failure, because "two of your five
// accounts failed" is a normal result to display.
func (s *Service) TriggerManualRefreshForUser(ctx context.Context, userID string) (*models.ManualRefreshResponse, error) {
	accounts, err := s.storage.AccountStore().ListAccountsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}

	resp := &models.ManualRefreshResponse{UserID: userID}
	for _, account := range accounts {
		if !account.Active {
			continue
		}

		outcome := models.AccountRefreshOutcome{
			AccountID: account.ID,
			Broker:    account.Broker,
		}

		log, err := s.SyncBrokerAccount(ctx, account)
		switch {
		case errors.Is(err, models.ErrSyncInProgress):
			outcome.Status = models.RefreshSkipped
			resp.Skipped++
		case err != nil:
			outcome.Status = models.RefreshFailed
			outcome.Error = err.Error()
			outcome.ReauthNeeded = models.IsTokenExpired(err)
			resp.Failed++
		default:
			outcome.Status = models.RefreshOK
			outcome.PositionCount = log.PositionCount
			resp.Refreshed++
		}

		resp.Accounts = append(resp.Accounts, outcome)
	}

	s.logger.Info().
		Str("user", userID).
		Int("refreshed", resp.Refreshed).
		Int("skipped", resp.Skipped).
		Int("failed", resp.Failed).
		Msg("Manual refresh complete")

	return resp, nil
}

// runFullSyncForAccount is the broker-call + persist + audit primitive.
// Callers are responsible for holding the account lock. Always appends a
// SyncLog, terminal outcome SUCCESS or FAILED; there is no retry here,
// retries are a scheduling concern.
func (s *Service) runFullSyncForAccount(ctx context.Context, account *models.BrokerAccount) (*models.SyncLog, error) {
	log := &models.SyncLog{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		UserID:    account.UserID,
		Broker:    account.Broker,
		StartedAt: s.now(),
	}

	client, ok := s.brokers[account.Broker]
	if !ok {
		err := fmt.Errorf("no client registered for broker %s", account.Broker)
		s.finishFailed(ctx, log, err)
		return log, err
	}

	raws, err := client.FetchPositions(ctx, account)
	if err != nil {
		s.finishFailed(ctx, log, err)
		if models.IsTokenExpired(err) {
			// Stop schedulers from hammering a dead credential; the user
			// relinks to reactivate.
			if derr := s.storage.AccountStore().Deactivate(ctx, account.ID); derr != nil {
				s.logger.Warn().Str("account", account.ID).Err(derr).Msg("Failed to deactivate account")
			}
		}
		return log, err
	}

	positions := s.normalize(account, raws)

	symbols := make([]string, 0, len(positions))
	for _, p := range positions {
		symbols = append(symbols, p.Symbol)
	}
	s.market.WarmupPrices(ctx, symbols)

	if err := s.storage.PositionStore().ReplacePositions(ctx, account.ID, positions); err != nil {
		err = fmt.Errorf("failed to replace positions for account %s: %w", account.ID, err)
		s.finishFailed(ctx, log, err)
		return log, err
	}

	if err := s.storage.AccountStore().TouchLastSynced(ctx, account.ID); err != nil {
		s.logger.Warn().Str("account", account.ID).Err(err).Msg("Failed to update last-synced timestamp")
	}

	log.FinishedAt = s.now()
	log.Outcome = models.SyncSuccess
	log.PositionCount = len(positions)
	s.appendLog(ctx, log)

	s.logger.Info().
		Str("account", account.ID).
		Str("broker", string(account.Broker)).
		Int("positions", len(positions)).
		Msg("Account synced")

	return log, nil
}

// normalize converts raw broker positions to cached positions, folding lot
// multipliers into the quantity so downstream math never sees lots.
func (s *Service) normalize(account *models.BrokerAccount, raws []models.RawPosition) []models.CachedPosition {
	now := s.now()
	positions := make([]models.CachedPosition, 0, len(raws))
	for _, raw := range raws {
		positions = append(positions, models.CachedPosition{
			ID:        uuid.NewString(),
			UserID:    account.UserID,
			AccountID: account.ID,
			Broker:    account.Broker,
			Symbol:    raw.Symbol,
			Quantity:  raw.Units(),
			BuyPrice:  raw.BuyPrice,
			Category:  raw.Category,
			FetchedAt: now,
		})
	}
	return positions
}

// finishFailed stamps and appends a FAILED SyncLog carrying broker detail.
func (s *Service) finishFailed(ctx context.Context, log *models.SyncLog, err error) {
	log.FinishedAt = s.now()
	log.Outcome = models.SyncFailed
	log.Error = err.Error()
	log.TokenExpired = models.IsTokenExpired(err)
	s.appendLog(ctx, log)
}

// appendLog appends a SyncLog. Audit failures are logged, never allowed to
// mask the sync outcome.
func (s *Service) appendLog(ctx context.Context, log *models.SyncLog) {
	if err := s.storage.SyncLogStore().Append(ctx, log); err != nil {
		s.logger.Warn().Str("account", log.AccountID).Err(err).Msg("Failed to append sync log")
	}
}

// Ensure Service implements PortfolioSyncService
var _ interfaces.PortfolioSyncService = (*Service)(nil)
