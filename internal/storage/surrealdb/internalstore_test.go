package surrealdb

import (
	"context"
	"testing"
)

func TestInternalStoreSystemKV(t *testing.T) {
	store := NewInternalStore(testDB(t), testLogger())
	ctx := context.Background()

	if err := store.SetSystemKV(ctx, "quotes_api_key", "k-123"); err != nil {
		t.Fatalf("SetSystemKV: %v", err)
	}

	value, err := store.GetSystemKV(ctx, "quotes_api_key")
	if err != nil {
		t.Fatalf("GetSystemKV: %v", err)
	}
	if value != "k-123" {
		t.Errorf("value = %q, want k-123", value)
	}
}

func TestInternalStoreSystemKVOverwrite(t *testing.T) {
	store := NewInternalStore(testDB(t), testLogger())
	ctx := context.Background()

	if err := store.SetSystemKV(ctx, "key", "v1"); err != nil {
		t.Fatalf("SetSystemKV: %v", err)
	}
	if err := store.SetSystemKV(ctx, "key", "v2"); err != nil {
		t.Fatalf("SetSystemKV overwrite: %v", err)
	}

	value, err := store.GetSystemKV(ctx, "key")
	if err != nil {
		t.Fatalf("GetSystemKV: %v", err)
	}
	if value != "v2" {
		t.Errorf("value = %q, want v2", value)
	}
}

func TestInternalStoreSystemKVMissing(t *testing.T) {
	store := NewInternalStore(testDB(t), testLogger())

	if _, err := store.GetSystemKV(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing key")
	}
}
