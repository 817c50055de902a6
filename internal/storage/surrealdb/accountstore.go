package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// AccountStore persists linked broker accounts in the broker_account table,
// keyed by account ID.
type AccountStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewAccountStore(db *surrealdb.DB, logger *common.Logger) *AccountStore {
	return &AccountStore{
		db:     db,
		logger: logger,
	}
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID string) (*models.BrokerAccount, error) {
	account, err := surrealdb.Select[models.BrokerAccount](ctx, s.db, surrealmodels.NewRecordID("broker_account", accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to select account: %w", err)
	}
	if account == nil {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func (s *AccountStore) SaveAccount(ctx context.Context, account *models.BrokerAccount) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	sql := "UPSERT type::record('broker_account', $id) CONTENT $account"
	vars := map[string]any{"id": account.ID, "account": account}

	if _, err := surrealdb.Query[[]models.BrokerAccount](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *AccountStore) ListAccountsForUser(ctx context.Context, userID string) ([]*models.BrokerAccount, error) {
	sql := "SELECT * FROM broker_account WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.BrokerAccount](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user: %w", err)
	}

	var accounts []*models.BrokerAccount
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			accounts = append(accounts, &(*results)[0].Result[i])
		}
	}
	return accounts, nil
}

func (s *AccountStore) ListActiveAccounts(ctx context.Context) ([]*models.BrokerAccount, error) {
	sql := "SELECT * FROM broker_account WHERE active = true"

	results, err := surrealdb.Query[[]models.BrokerAccount](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	var accounts []*models.BrokerAccount
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			accounts = append(accounts, &(*results)[0].Result[i])
		}
	}
	return accounts, nil
}

func (s *AccountStore) Deactivate(ctx context.Context, accountID string) error {
	sql := "UPDATE type::record('broker_account', $id) SET active = false"
	vars := map[string]any{"id": accountID}

	if _, err := surrealdb.Query[[]models.BrokerAccount](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.logger.Info().Str("account", accountID).Msg("Account deactivated")
	return nil
}

func (s *AccountStore) TouchLastSynced(ctx context.Context, accountID string) error {
	sql := "UPDATE type::record('broker_account', $id) SET last_synced_at = $ts"
	vars := map[string]any{"id": accountID, "ts": time.Now()}

	if _, err := surrealdb.Query[[]models.BrokerAccount](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update last synced timestamp: %w", err)
	}
	return nil
}

var _ interfaces.AccountStore = (*AccountStore)(nil)
