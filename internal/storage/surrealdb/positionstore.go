package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// PositionStore persists cached positions in the position table. The sync
// layer is the only writer; readers see whole snapshots only.
type PositionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPositionStore(db *surrealdb.DB, logger *common.Logger) *PositionStore {
	return &PositionStore{
		db:     db,
		logger: logger,
	}
}

// ReplacePositions swaps the account's position set inside one transaction,
// so a concurrent reader sees either the full old snapshot or the full new
// one, never a mixture.
func (s *PositionStore) ReplacePositions(ctx context.Context, accountID string, positions []models.CachedPosition) error {
	sql := `BEGIN TRANSACTION;
DELETE position WHERE account_id = $account_id;
INSERT INTO position $positions;
COMMIT TRANSACTION;`
	vars := map[string]any{
		"account_id": accountID,
		"positions":  positions,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to replace positions: %w", err)
	}

	s.logger.Debug().
		Str("account", accountID).
		Int("positions", len(positions)).
		Msg("Position snapshot replaced")
	return nil
}

func (s *PositionStore) GetPositionsForAccount(ctx context.Context, accountID string) ([]models.CachedPosition, error) {
	sql := "SELECT * FROM position WHERE account_id = $account_id"
	vars := map[string]any{"account_id": accountID}

	return s.query(ctx, sql, vars)
}

func (s *PositionStore) GetPositionsForUser(ctx context.Context, userID string) ([]models.CachedPosition, error) {
	sql := "SELECT * FROM position WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	return s.query(ctx, sql, vars)
}

func (s *PositionStore) GetPositionsForUserByCategory(ctx context.Context, userID string, category models.PositionCategory) ([]models.CachedPosition, error) {
	sql := "SELECT * FROM position WHERE user_id = $user_id AND category = $category"
	vars := map[string]any{"user_id": userID, "category": string(category)}

	return s.query(ctx, sql, vars)
}

func (s *PositionStore) query(ctx context.Context, sql string, vars map[string]any) ([]models.CachedPosition, error) {
	results, err := surrealdb.Query[[]models.CachedPosition](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

var _ interfaces.PositionStore = (*PositionStore)(nil)
