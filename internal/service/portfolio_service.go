package service

import (
	"context"
	"fmt"

	"trading_go/internal/domain"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentPlaces is the precision of every profit/loss percentage.
const percentPlaces = 2

// PositionSource provides the current open positions.
type PositionSource interface {
	Positions(ctx context.Context) ([]domain.Position, error)
}

// Holding is one valued position of the portfolio report.
type Holding struct {
	Symbol            string
	Quantity          int64
	AveragePrice      decimal.Decimal
	CurrentPrice      decimal.Decimal
	CurrentValue      decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent decimal.Decimal
}

// Summary aggregates all holdings.
type Summary struct {
	TotalValue             decimal.Decimal
	TotalInvested          decimal.Decimal
	TotalProfitLoss        decimal.Decimal
	TotalProfitLossPercent decimal.Decimal
}

// Report is the valued portfolio.
type Report struct {
	Currency string
	Holdings []Holding
	Summary  Summary
}

// PortfolioService values positions against the catalog reference prices.
// Reports are computed on every call and never cached.
type PortfolioService struct {
	positions PositionSource
	catalog   *domain.Catalog
	currency  string
	places    int32
}

// NewPortfolioService creates a service reporting in currency (ISO 4217 code).
func NewPortfolioService(positions PositionSource, catalog *domain.Catalog, currency string) (*PortfolioService, error) {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	return &PortfolioService{
		positions: positions,
		catalog:   catalog,
		currency:  cur.Code,
		places:    int32(cur.Fraction),
	}, nil
}

// Report builds the portfolio report from the current positions.
func (s *PortfolioService) Report(ctx context.Context) (Report, error) {
	positions, err := s.positions.Positions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load positions: %w", err)
	}
	return BuildReport(positions, s.catalog, s.currency, s.places)
}

// BuildReport values positions in the given order.
// Money is rounded to places and percentages to two places. The total value is
// the sum of the rounded holding values; the total invested is summed unrounded.
func BuildReport(positions []domain.Position, catalog *domain.Catalog, currency string, places int32) (Report, error) {
	report := Report{
		Currency: currency,
		Holdings: make([]Holding, 0, len(positions)),
	}

	totalValue := decimal.Zero
	totalInvested := decimal.Zero

	for _, p := range positions {
		inst, ok := catalog.Lookup(p.Symbol)
		if !ok {
			return Report{}, fmt.Errorf("%w: position in %s has no instrument", domain.ErrInvalidSymbol, p.Symbol)
		}

		value := inst.LastTradedPrice.Mul(decimal.NewFromInt(p.Quantity))
		pl := value.Sub(p.TotalInvested)
		rounded := value.Round(places)

		report.Holdings = append(report.Holdings, Holding{
			Symbol:            p.Symbol,
			Quantity:          p.Quantity,
			AveragePrice:      p.AveragePrice.Round(places),
			CurrentPrice:      inst.LastTradedPrice,
			CurrentValue:      rounded,
			ProfitLoss:        pl.Round(places),
			ProfitLossPercent: percent(pl, p.TotalInvested),
		})

		totalValue = totalValue.Add(rounded)
		totalInvested = totalInvested.Add(p.TotalInvested)
	}

	totalPL := totalValue.Sub(totalInvested)
	report.Summary = Summary{
		TotalValue:             totalValue.Round(places),
		TotalInvested:          totalInvested.Round(places),
		TotalProfitLoss:        totalPL.Round(places),
		TotalProfitLossPercent: percent(totalPL, totalInvested),
	}
	return report, nil
}

// percent returns part/base in percent, 0 when base is not positive.
func percent(part, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return part.Div(base).Mul(hundred).Round(percentPlaces)
}
