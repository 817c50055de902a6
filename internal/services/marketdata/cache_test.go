package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/folioworks/folio/internal/models"
)

func price(symbol string, current float64, fetchedAt time.Time) models.MarketPrice {
	return models.MarketPrice{
		Symbol:        symbol,
		Current:       decimal.NewFromFloat(current),
		PreviousClose: decimal.NewFromFloat(current - 1),
		FetchedAt:     fetchedAt,
	}
}

func TestPriceCache_PutGet(t *testing.T) {
	c := NewPriceCache()
	now := time.Now()

	if !c.Put(price("RELIANCE", 2900.50, now)) {
		t.Fatal("Put rejected a valid price")
	}

	got, ok := c.Get("RELIANCE")
	if !ok {
		t.Fatal("Get miss for cached symbol")
	}
	if !got.Current.Equal(decimal.NewFromFloat(2900.50)) {
		t.Errorf("Current = %s, want 2900.50", got.Current)
	}

	if _, ok := c.Get("TCS"); ok {
		t.Error("Get hit for symbol never cached")
	}
}

func TestPriceCache_RejectsNegativePrice(t *testing.T) {
	c := NewPriceCache()
	p := models.MarketPrice{
		Symbol:    "BAD",
		Current:   decimal.NewFromFloat(-1),
		FetchedAt: time.Now(),
	}

	if c.Put(p) {
		t.Error("Put accepted a negative price")
	}
	if _, ok := c.Get("BAD"); ok {
		t.Error("negative price was cached")
	}
}

func TestPriceCache_MonotonicTimestamps(t *testing.T) {
	c := NewPriceCache()
	now := time.Now()

	c.Put(price("NIFTY24SEPFUT", 24100, now))

	// An older fetch must not overwrite a newer entry
	if c.Put(price("NIFTY24SEPFUT", 24050, now.Add(-10*time.Second))) {
		t.Error("Put accepted an entry older than the cached one")
	}

	got, _ := c.Get("NIFTY24SEPFUT")
	if !got.Current.Equal(decimal.NewFromInt(24100)) {
		t.Errorf("Current = %s, want 24100 (newer entry preserved)", got.Current)
	}

	// Equal timestamp is allowed (non-decreasing, not strictly increasing)
	if !c.Put(price("NIFTY24SEPFUT", 24110, now)) {
		t.Error("Put rejected an entry with an equal timestamp")
	}
}

func TestPriceCache_GetReturnsCopy(t *testing.T) {
	c := NewPriceCache()
	now := time.Now()
	c.Put(price("INFY", 1500, now))

	got, _ := c.Get("INFY")
	got.Current = decimal.NewFromInt(1)

	again, _ := c.Get("INFY")
	if !again.Current.Equal(decimal.NewFromInt(1500)) {
		t.Error("mutating a returned price leaked into the cache")
	}
}
