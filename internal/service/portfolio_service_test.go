package service

import (
	"context"
	"errors"
	"testing"

	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type staticPositions struct {
	positions []domain.Position
	err       error
}

func (s staticPositions) Positions(context.Context) ([]domain.Position, error) {
	return s.positions, s.err
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c, err := domain.NewCatalog(domain.DefaultInstruments())
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return c
}

func TestPortfolioService_Report(t *testing.T) {
	src := staticPositions{positions: []domain.Position{
		{Symbol: "AAPL", Quantity: 10, AveragePrice: d("170"), TotalInvested: d("1700")},
		{Symbol: "MSFT", Quantity: 3, AveragePrice: d("400"), TotalInvested: d("1200")},
	}}
	svc, err := NewPortfolioService(src, testCatalog(t), "USD")
	if err != nil {
		t.Fatalf("NewPortfolioService failed: %v", err)
	}

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report.Currency != "USD" || len(report.Holdings) != 2 {
		t.Fatalf("Unexpected report: %+v", report)
	}

	tests := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"AAPL current value", report.Holdings[0].CurrentValue, "1755"},
		{"AAPL profit", report.Holdings[0].ProfitLoss, "55"},
		{"AAPL percent", report.Holdings[0].ProfitLossPercent, "3.24"},
		{"AAPL current price", report.Holdings[0].CurrentPrice, "175.50"},
		{"MSFT current value", report.Holdings[1].CurrentValue, "1140"},
		{"MSFT loss", report.Holdings[1].ProfitLoss, "-60"},
		{"MSFT percent", report.Holdings[1].ProfitLossPercent, "-5"},
		{"total value", report.Summary.TotalValue, "2895"},
		{"total invested", report.Summary.TotalInvested, "2900"},
		{"total profit", report.Summary.TotalProfitLoss, "-5"},
		{"total percent", report.Summary.TotalProfitLossPercent, "-0.17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(d(tt.want)) {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestBuildReport_RoundsToCurrencyUnits(t *testing.T) {
	catalog := testCatalog(t)
	positions := []domain.Position{
		// 100 / 3 = 33.333...
		{Symbol: "AAPL", Quantity: 3, AveragePrice: d("100").Div(d("3")), TotalInvested: d("100")},
	}

	t.Run("USD has two places", func(t *testing.T) {
		report, err := BuildReport(positions, catalog, "USD", 2)
		if err != nil {
			t.Fatalf("BuildReport failed: %v", err)
		}
		if !report.Holdings[0].AveragePrice.Equal(d("33.33")) {
			t.Errorf("Expected 33.33, got %s", report.Holdings[0].AveragePrice)
		}
		// 3 x 175.50 = 526.50
		if !report.Holdings[0].CurrentValue.Equal(d("526.50")) {
			t.Errorf("Expected 526.50, got %s", report.Holdings[0].CurrentValue)
		}
	})

	t.Run("JPY has none", func(t *testing.T) {
		svc, err := NewPortfolioService(staticPositions{positions: positions}, catalog, "JPY")
		if err != nil {
			t.Fatalf("NewPortfolioService failed: %v", err)
		}
		report, _ := svc.Report(context.Background())
		if !report.Holdings[0].AveragePrice.Equal(d("33")) {
			t.Errorf("Expected 33, got %s", report.Holdings[0].AveragePrice)
		}
		if !report.Holdings[0].CurrentValue.Equal(d("527")) {
			t.Errorf("Expected 527, got %s", report.Holdings[0].CurrentValue)
		}
	})
}

func TestBuildReport_TotalValueSumsRoundedHoldings(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "AAPL", Quantity: 1, AveragePrice: d("175"), TotalInvested: d("175")},
		{Symbol: "RELIANCE", Quantity: 1, AveragePrice: d("175"), TotalInvested: d("175")},
	}
	// 175.50 rounds to 176 twice: 352, not round(351.00).
	report, err := BuildReport(positions, testCatalog(t), "JPY", 0)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if !report.Summary.TotalValue.Equal(d("352")) {
		t.Errorf("Expected total value 352, got %s", report.Summary.TotalValue)
	}
	if !report.Summary.TotalProfitLoss.Equal(d("2")) {
		t.Errorf("Expected total profit 2, got %s", report.Summary.TotalProfitLoss)
	}
}

func TestBuildReport_Empty(t *testing.T) {
	report, err := BuildReport(nil, testCatalog(t), "USD", 2)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if len(report.Holdings) != 0 || report.Holdings == nil {
		t.Errorf("Expected empty non-nil holdings, got %v", report.Holdings)
	}
	if !report.Summary.TotalValue.IsZero() || !report.Summary.TotalProfitLossPercent.IsZero() {
		t.Errorf("Expected zero summary, got %+v", report.Summary)
	}
}

func TestBuildReport_ZeroInvestedGuardsPercent(t *testing.T) {
	positions := []domain.Position{{Symbol: "TSLA", Quantity: 1, AveragePrice: decimal.Zero, TotalInvested: decimal.Zero}}
	report, err := BuildReport(positions, testCatalog(t), "USD", 2)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if !report.Holdings[0].ProfitLossPercent.IsZero() || !report.Summary.TotalProfitLossPercent.IsZero() {
		t.Errorf("Expected 0 percent for zero investment, got %s", report.Holdings[0].ProfitLossPercent)
	}
}

func TestBuildReport_UnknownInstrument(t *testing.T) {
	positions := []domain.Position{{Symbol: "NOPE", Quantity: 1, TotalInvested: d("1")}}
	if _, err := BuildReport(positions, testCatalog(t), "USD", 2); !errors.Is(err, domain.ErrInvalidSymbol) {
		t.Errorf("Expected ErrInvalidSymbol, got %v", err)
	}
}

func TestPortfolioService_Errors(t *testing.T) {
	catalog := testCatalog(t)

	if _, err := NewPortfolioService(staticPositions{}, catalog, "XXX1"); err == nil {
		t.Error("Expected error for unknown currency")
	}

	svc, _ := NewPortfolioService(staticPositions{err: errors.New("engine stopped")}, catalog, "USD")
	if _, err := svc.Report(context.Background()); err == nil {
		t.Error("Expected source error to propagate")
	}
}
