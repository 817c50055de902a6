// Package fno derives point-in-time P&L for derivative positions from
// cached positions and live prices. Decimal arithmetic throughout; float64
// never touches a money value.
package fno

import (
	"context"
	"fmt"
	"sort"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// moneyPlaces is the rounding precision for reported P&L figures.
const moneyPlaces = 2

// Service implements FnoPositionService.
type Service struct {
	positions interfaces.PositionStore
	market    interfaces.MarketDataService
	logger    *common.Logger
}

// NewService creates a new F&O position service.
func NewService(positions interfaces.PositionStore, market interfaces.MarketDataService, logger *common.Logger) *Service {
	return &Service{
		positions: positions,
		market:    market,
		logger:    logger,
	}
}

// GetFnoPositionsForUser returns the user's derivative positions with
// mark-to-market and day-gain figures, sorted by symbol. Positions whose
// symbol cannot be priced right now are excluded rather than reported with
// zeroed P&L, so a rendered zero always means "flat", never "unknown".
// Read-only: no locks are taken and no stored position is mutated.
func (s *Service) GetFnoPositionsForUser(ctx context.Context, userID string) ([]models.FnoPositionView, error) {
	positions, err := s.positions.GetPositionsForUserByCategory(ctx, userID, models.PositionFnO)
	if err != nil {
		return nil, fmt.Errorf("failed to load fno positions for user %s: %w", userID, err)
	}
	if len(positions) == 0 {
		return []models.FnoPositionView{}, nil
	}

	symbols := make([]string, 0, len(positions))
	seen := make(map[string]bool, len(positions))
	for _, p := range positions {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			symbols = append(symbols, p.Symbol)
		}
	}

	prices, err := s.market.GetPrices(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to price fno symbols for user %s: %w", userID, err)
	}

	views := make([]models.FnoPositionView, 0, len(positions))
	excluded := 0
	for _, p := range positions {
		price, ok := prices[p.Symbol]
		if !ok {
			excluded++
			continue
		}
		views = append(views, buildView(p, price))
	}

	if excluded > 0 {
		s.logger.Debug().
			Str("user", userID).
			Int("excluded", excluded).
			Msg("Fno positions excluded, no price available")
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Symbol < views[j].Symbol })
	return views, nil
}

// buildView computes the per-position P&L:
//
//	mtm     = (current − buy)       × quantity
//	dayGain = (current − prevClose) × quantity
//
// Quantity is signed, so short positions flip the sign naturally. Rounding
// happens once, on the final products, half away from zero.
func buildView(p models.CachedPosition, price *models.MarketPrice) models.FnoPositionView {
	mtm := price.Current.Sub(p.BuyPrice).Mul(p.Quantity).Round(moneyPlaces)
	dayGain := price.Current.Sub(price.PreviousClose).Mul(p.Quantity).Round(moneyPlaces)
	return models.FnoPositionView{
		Symbol:        p.Symbol,
		Broker:        p.Broker,
		Quantity:      p.Quantity,
		BuyPrice:      p.BuyPrice,
		CurrentPrice:  price.Current,
		PreviousClose: price.PreviousClose,
		MTM:           mtm,
		DayGain:       dayGain,
	}
}

var _ interfaces.FnoPositionService = (*Service)(nil)
