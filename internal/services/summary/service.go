// Package summary assembles read-only portfolio projections over cached
// positions priced at the latest cached quotes.
package summary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// Service implements SummaryService.
type Service struct {
	positions interfaces.PositionStore
	market    interfaces.MarketDataService
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates a new summary service.
func NewService(positions interfaces.PositionStore, market interfaces.MarketDataService, logger *common.Logger) *Service {
	return &Service{
		positions: positions,
		market:    market,
		logger:    logger,
		now:       time.Now,
	}
}

// GetPortfolioSummary totals value, cost, and gain across the user's cached
// positions, broken down by category. Symbols without a resolvable price
// are excluded from the totals and reported in UnpricedSymbols so the
// caller can flag the summary as incomplete instead of silently undercounting.
func (s *Service) GetPortfolioSummary(ctx context.Context, userID string) (*models.PortfolioSummary, error) {
	positions, err := s.positions.GetPositionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions for user %s: %w", userID, err)
	}

	out := &models.PortfolioSummary{
		UserID:     userID,
		ByCategory: make(map[models.PositionCategory]models.CategorySummary),
		AsOf:       s.now(),
	}
	if len(positions) == 0 {
		return out, nil
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
		return nil, fmt.Errorf("failed to price symbols for user %s: %w", userID, err)
	}

	unpriced := make(map[string]bool)
	for _, p := range positions {
		price, ok := prices[p.Symbol]
		if !ok {
			unpriced[p.Symbol] = true
			continue
		}

		value := price.Current.Mul(p.Quantity)
		cost := p.BuyPrice.Mul(p.Quantity)

		out.TotalValue = out.TotalValue.Add(value)
		out.TotalCost = out.TotalCost.Add(cost)
		out.Positions++

		cat := out.ByCategory[p.Category]
		cat.Value = cat.Value.Add(value)
		cat.Cost = cat.Cost.Add(cost)
		cat.Gain = cat.Value.Sub(cat.Cost)
		cat.Count++
		out.ByCategory[p.Category] = cat
	}
	out.TotalGain = out.TotalValue.Sub(out.TotalCost)

	for symbol := range unpriced {
		out.UnpricedSymbols = append(out.UnpricedSymbols, symbol)
	}
	sort.Strings(out.UnpricedSymbols)

	if len(out.UnpricedSymbols) > 0 {
		s.logger.Debug().
			Str("user", userID).
			Int("unpriced", len(out.UnpricedSymbols)).
			Msg("Portfolio summary incomplete, symbols without quotes")
	}

	return out, nil
}

var _ interfaces.SummaryService = (*Service)(nil)
