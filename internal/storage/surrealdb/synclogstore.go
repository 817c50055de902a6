package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// SyncLogStore holds the append-only sync audit trail in the sync_log
// table. Records are never updated or deleted.
type SyncLogStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSyncLogStore(db *surrealdb.DB, logger *common.Logger) *SyncLogStore {
	return &SyncLogStore{
		db:     db,
		logger: logger,
	}
}

func (s *SyncLogStore) Append(ctx context.Context, log *models.SyncLog) error {
	sql := "CREATE type::record('sync_log', $id) CONTENT $log"
	vars := map[string]any{"id": log.ID, "log": log}

	if _, err := surrealdb.Query[[]models.SyncLog](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

func (s *SyncLogStore) ListForAccount(ctx context.Context, accountID string, limit int) ([]*models.SyncLog, error) {
	sql := "SELECT * FROM sync_log WHERE account_id = $account_id ORDER BY started_at DESC"
	vars := map[string]any{"account_id": accountID}
	if limit > 0 {
		sql += " LIMIT $limit"
		vars["limit"] = limit
	}

	results, err := surrealdb.Query[[]models.SyncLog](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}

	var logs []*models.SyncLog
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			logs = append(logs, &(*results)[0].Result[i])
		}
	}
	return logs, nil
}

var _ interfaces.SyncLogStore = (*SyncLogStore)(nil)
