package brokergw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/models"
)

func testAccount() *models.BrokerAccount {
	return &models.BrokerAccount{
		ID:          "acct-1",
		UserID:      "user-1",
		Broker:      models.BrokerZerodha,
		Active:      true,
		AccessToken: "broker-token-xyz",
	}
}

func TestFetchPositions_DecodesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/brokers/zerodha/positions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer api key", got)
		}
		if got := r.Header.Get("X-Broker-Token"); got != "broker-token-xyz" {
			t.Errorf("X-Broker-Token = %q, want account access token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"symbol":"NIFTY25SEPFUT","quantity":"1","lots":50,"buy_price":"21500.00","category":"fno"},
			{"symbol":"RELIANCE","quantity":"10","buy_price":"2900.50","category":"equity"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	positions, err := client.FetchPositions(context.Background(), testAccount())
	if err != nil {
		t.Fatalf("FetchPositions returned error: %v", err)
	}

	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].Lots != 50 || !positions[0].Units().Equal(decimal.NewFromInt(50)) {
		t.Errorf("lot folding: Units() = %v, want 50", positions[0].Units())
	}
	if positions[1].Category != models.PositionEquity {
		t.Errorf("category = %q, want equity", positions[1].Category)
	}
	if !positions[1].BuyPrice.Equal(decimal.RequireFromString("2900.50")) {
		t.Errorf("buy price = %v, want 2900.50", positions[1].BuyPrice)
	}
}

func TestFetchPositions_UnauthorizedTagsTokenExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"access token expired"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchPositions(context.Background(), testAccount())
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !models.IsTokenExpired(err) {
		t.Errorf("401 should be tagged token-expired, got %v", err)
	}

	var be *models.BrokerError
	if !errors.As(err, &be) {
		t.Fatalf("expected *models.BrokerError, got %T", err)
	}
	if be.Reason != models.TokenExpiryExpired {
		t.Errorf("reason = %q, want expired", be.Reason)
	}
	if be.Broker != models.BrokerZerodha {
		t.Errorf("broker = %q, want zerodha", be.Broker)
	}
}

func TestFetchPositions_ForbiddenTagsRevoked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"session revoked by user"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchPositions(context.Background(), testAccount())

	var be *models.BrokerError
	if !errors.As(err, &be) {
		t.Fatalf("expected *models.BrokerError, got %T", err)
	}
	if be.Reason != models.TokenExpiryRevoked {
		t.Errorf("reason = %q, want revoked", be.Reason)
	}
}

func TestFetchPositions_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream broker timeout"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchPositions(context.Background(), testAccount())
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if models.IsTokenExpired(err) {
		t.Errorf("transient gateway failure must not be tagged token-expired: %v", err)
	}
}

func TestFetchPositions_EmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	positions, err := client.FetchPositions(context.Background(), testAccount())
	if err != nil {
		t.Fatalf("FetchPositions returned error: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("expected empty snapshot, got %d positions", len(positions))
	}
}
