package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/folioworks/folio/internal/models"
)

func seedAccount(t *testing.T, store *AccountStore, id, userID string, broker models.BrokerType, active bool) *models.BrokerAccount {
	t.Helper()
	account := &models.BrokerAccount{
		ID:          id,
		UserID:      userID,
		Broker:      broker,
		Active:      active,
		AccessToken: "tok-" + id,
	}
	if err := store.SaveAccount(context.Background(), account); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	return account
}

func TestAccountStoreSaveAndGet(t *testing.T) {
	store := NewAccountStore(testDB(t), testLogger())
	ctx := context.Background()

	seedAccount(t, store, "acct-1", "user-1", models.BrokerZerodha, true)

	got, err := store.GetAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.UserID != "user-1" || got.Broker != models.BrokerZerodha || !got.Active {
		t.Errorf("unexpected account: %+v", got)
	}
	if got.AccessToken != "tok-acct-1" {
		t.Errorf("access token not round-tripped: %q", got.AccessToken)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt stamped on save")
	}
}

func TestAccountStoreGetMissing(t *testing.T) {
	store := NewAccountStore(testDB(t), testLogger())

	if _, err := store.GetAccount(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing account")
	}
}

func TestAccountStoreListAccountsForUser(t *testing.T) {
	store := NewAccountStore(testDB(t), testLogger())
	ctx := context.Background()

	seedAccount(t, store, "acct-1", "user-1", models.BrokerZerodha, true)
	seedAccount(t, store, "acct-2", "user-1", models.BrokerUpstox, false)
	seedAccount(t, store, "acct-3", "user-2", models.BrokerAngelOne, true)

	accounts, err := store.ListAccountsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAccountsForUser: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts for user-1, got %d", len(accounts))
	}
}

func TestAccountStoreListActiveAccounts(t *testing.T) {
	store := NewAccountStore(testDB(t), testLogger())
	ctx := context.Background()

	seedAccount(t, store, "acct-1", "user-1", models.BrokerZerodha, true)
	seedAccount(t, store, "acct-2", "user-1", models.BrokerUpstox, false)

	accounts, err := store.ListActiveAccounts(ctx)
	if err != nil {
		t.Fatalf("ListActiveAccounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "acct-1" {
		t.Errorf("expected only acct-1 active, got %+v", accounts)
	}
}

func TestAccountStoreDeactivate(t *testing.T) {
	store := NewAccountStore(testDB(t), testLogger())
	ctx := context.Background()

	seedAccount(t, store, "acct-1", "user-1", models.BrokerZerodha, true)

	if err := store.Deactivate(ctx, "acct-1"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	got, err := store.GetAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("GetAccount after deactivate: %v", err)
	}
	if got.Active {
		t.Error("expected account inactive after deactivate")
	}
	// Record survives for sync history.
	if got.UserID != "user-1" {
		t.Errorf("deactivate must not wipe the record: %+v", got)
	}
}

func TestAccountStoreTouchLastSynced(t *testing.T) {
	store := NewAccountStore(testDB(t), testLogger())
	ctx := context.Background()

	seedAccount(t, store, "acct-1", "user-1", models.BrokerZerodha, true)

	before := time.Now().Add(-time.Second)
	if err := store.TouchLastSynced(ctx, "acct-1"); err != nil {
		t.Fatalf("TouchLastSynced: %v", err)
	}

	got, err := store.GetAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.LastSyncedAt.Before(before) {
		t.Errorf("expected last_synced_at updated, got %v", got.LastSyncedAt)
	}
}
