package marketdata

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// Service implements MarketDataService with a cache-aside policy. The
// freshness window is asymmetric: tight while the market is open, long when
// it is closed, since a quote cannot move outside trading hours.
type Service struct {
	provider interfaces.QuoteProvider
	calendar interfaces.ExchangeCalendar
	cache    *PriceCache
	logger   *common.Logger

	freshnessOpen   time.Duration
	freshnessClosed time.Duration

	sf  singleflight.Group
	now func() time.Time // injectable clock for testing
}

// NewService creates a new market data service.
func NewService(provider interfaces.QuoteProvider, calendar interfaces.ExchangeCalendar, cfg common.MarketConfig, logger *common.Logger) *Service {
	return &Service{
		provider:        provider,
		calendar:        calendar,
		cache:           NewPriceCache(),
		logger:          logger,
		freshnessOpen:   cfg.GetFreshnessOpen(),
		freshnessClosed: cfg.GetFreshnessClosed(),
		now:             time.Now,
	}
}

// Cache exposes the underlying price cache for read-only inspection.
func (s *Service) Cache() *PriceCache {
	return s.cache
}

// IsMarketOpen reports whether the exchange is currently trading.
func (s *Service) IsMarketOpen() bool {
	return s.calendar.IsOpenAt(s.now())
}

// freshness returns the TTL applicable right now.
func (s *Service) freshness() time.Duration {
	if s.IsMarketOpen() {
		return s.freshnessOpen
	}
	return s.freshnessClosed
}

// GetPrice returns the cached price while fresh, fetching otherwise. When
// the refresh fails but a stale entry survives, the stale entry is served:
// a price that is minutes old still beats no price at all. The error
// propagates only when no usable price exists.
func (s *Service) GetPrice(ctx context.Context, symbol string) (*models.MarketPrice, error) {
	cached, ok := s.cache.Get(symbol)
	if ok && common.IsFreshAt(cached.FetchedAt, s.now(), s.freshness()) {
		return &cached, nil
	}

	price, err := s.FetchAndCachePrice(ctx, symbol)
	if err != nil {
		if ok {
			s.logger.Warn().
				Str("symbol", symbol).
				Time("fetched_at", cached.FetchedAt).
				Err(err).
				Msg("Price refresh failed, serving stale entry")
			return &cached, nil
		}
		return nil, err
	}
	return price, nil
}

// GetPrices resolves each symbol independently. Symbols that cannot be
// priced are omitted from the result map; the batch never aborts on a
// single bad symbol.
func (s *Service) GetPrices(ctx context.Context, symbols []string) (map[string]*models.MarketPrice, error) {
	result := make(map[string]*models.MarketPrice, len(symbols))
	for _, symbol := range symbols {
		price, err := s.GetPrice(ctx, symbol)
		if err != nil {
			s.logger.Debug().Str("symbol", symbol).Err(err).Msg("Price unresolved, omitting from batch")
			continue
		}
		result[symbol] = price
	}
	return result, nil
}

// FetchAndCachePrice unconditionally calls the upstream provider and
// overwrites the cache entry for the symbol. Concurrent callers for the
// same symbol collapse onto one upstream call. On failure the stale cache
// entry, if any, is left in place so callers can still serve it.
func (s *Service) FetchAndCachePrice(ctx context.Context, symbol string) (*models.MarketPrice, error) {
	v, err, _ := s.sf.Do(symbol, func() (interface{}, error) {
		// The flight is shared by every collapsed caller, so it must not
		// inherit the initiating caller's cancellation.
		price, err := s.provider.FetchQuote(context.WithoutCancel(ctx), symbol)
		if err != nil {
			return nil, models.NewMarketDataError(symbol, err)
		}
		if price.FetchedAt.IsZero() {
			price.FetchedAt = s.now()
		}
		if !s.cache.Put(*price) {
			s.logger.Warn().Str("symbol", symbol).Msg("Fetched price rejected by cache")
		}
		return price, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MarketPrice), nil
}

// WarmupPrices bulk pre-fetches prices ahead of a sync run. Best effort:
// one bad symbol cannot block warmup of the rest.
func (s *Service) WarmupPrices(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		return
	}

	start := s.now()
	warmed := 0
	for _, symbol := range symbols {
		if cached, ok := s.cache.Get(symbol); ok && common.IsFreshAt(cached.FetchedAt, s.now(), s.freshness()) {
			continue
		}
		if _, err := s.FetchAndCachePrice(ctx, symbol); err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Warmup fetch failed")
			continue
		}
		warmed++
	}

	s.logger.Debug().
		Int("symbols", len(symbols)).
		Int("fetched", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("Price warmup complete")
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
