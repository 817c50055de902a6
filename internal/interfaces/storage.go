// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/folioworks/folio/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	AccountStore() AccountStore
	PositionStore() PositionStore
	SyncLogStore() SyncLogStore
	InternalStore() InternalStore

	// Lifecycle
	Close() error
}

// AccountStore manages linked broker accounts.
type AccountStore interface {
	GetAccount(ctx context.Context, accountID string) (*models.BrokerAccount, error)
	SaveAccount(ctx context.Context, account *models.BrokerAccount) error
	ListAccountsForUser(ctx context.Context, userID string) ([]*models.BrokerAccount, error)
	ListActiveAccounts(ctx context.Context) ([]*models.BrokerAccount, error)

	// Deactivate marks an account inactive (unlink or unrecoverable auth
	// failure). The record is kept because sync history references it.
	Deactivate(ctx context.Context, accountID string) error

	// TouchLastSynced updates the last-successful-sync timestamp.
	TouchLastSynced(ctx context.Context, accountID string) error
}

// PositionStore is the durable store of cached positions keyed by user and
// account. PortfolioSyncService is the only writer.
type PositionStore interface {
	// ReplacePositions atomically replaces the account's position set.
	// Readers never observe a mixture of the old and new sets.
	ReplacePositions(ctx context.Context, accountID string, positions []models.CachedPosition) error

	GetPositionsForAccount(ctx context.Context, accountID string) ([]models.CachedPosition, error)
	GetPositionsForUser(ctx context.Context, userID string) ([]models.CachedPosition, error)
	GetPositionsForUserByCategory(ctx context.Context, userID string, category models.PositionCategory) ([]models.CachedPosition, error)
}

// SyncLogStore holds the append-only sync audit trail.
type SyncLogStore interface {
	Append(ctx context.Context, log *models.SyncLog) error
	ListForAccount(ctx context.Context, accountID string, limit int) ([]*models.SyncLog, error)
}

// InternalStore manages system-level key-value configuration such as
// resolved API keys.
type InternalStore interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}
