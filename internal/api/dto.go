package api

import (
	"encoding/json"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/service"

	"github.com/shopspring/decimal"
)

// Decimals leave the API as JSON numbers carrying the exact decimal text.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func nullNumber(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := number(d.Decimal)
	return &n
}

// InstrumentDTO is one entry of GET /instruments.
type InstrumentDTO struct {
	Symbol          string      `json:"symbol"`
	Exchange        string      `json:"exchange"`
	InstrumentType  string      `json:"instrumentType"`
	LastTradedPrice json.Number `json:"lastTradedPrice"`
}

func newInstrumentDTO(i domain.Instrument) InstrumentDTO {
	return InstrumentDTO{
		Symbol:          i.Symbol,
		Exchange:        i.Exchange,
		InstrumentType:  i.InstrumentType,
		LastTradedPrice: number(i.LastTradedPrice),
	}
}

// OrderDTO is the wire form of an order. Unset prices and times are null.
type OrderDTO struct {
	OrderID        string       `json:"orderId"`
	Symbol         string       `json:"symbol"`
	OrderType      string       `json:"orderType"`
	OrderStyle     string       `json:"orderStyle"`
	Quantity       int64        `json:"quantity"`
	Price          *json.Number `json:"price"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	ExecutedAt     *time.Time   `json:"executedAt"`
	ExecutionPrice *json.Number `json:"executionPrice"`
}

func newOrderDTO(o *domain.Order) OrderDTO {
	return OrderDTO{
		OrderID:        o.ID,
		Symbol:         o.Symbol,
		OrderType:      o.Side.String(),
		OrderStyle:     o.Style.String(),
		Quantity:       o.Quantity,
		Price:          nullNumber(o.LimitPrice),
		Status:         o.Status.String(),
		CreatedAt:      o.CreatedAt,
		ExecutedAt:     o.ExecutedAt,
		ExecutionPrice: nullNumber(o.ExecutionPrice),
	}
}

// TradeDTO is the wire form of a trade, also sent on the trade stream.
type TradeDTO struct {
	TradeID    string      `json:"tradeId"`
	OrderID    string      `json:"orderId"`
	Symbol     string      `json:"symbol"`
	OrderType  string      `json:"orderType"`
	Quantity   int64       `json:"quantity"`
	Price      json.Number `json:"price"`
	TotalValue json.Number `json:"totalValue"`
	ExecutedAt time.Time   `json:"executedAt"`
}

func newTradeDTO(t *domain.Trade) TradeDTO {
	return TradeDTO{
		TradeID:    t.ID,
		OrderID:    t.OrderID,
		Symbol:     t.Symbol,
		OrderType:  t.Side.String(),
		Quantity:   t.Quantity,
		Price:      number(t.Price),
		TotalValue: number(t.TotalValue),
		ExecutedAt: t.ExecutedAt,
	}
}

// EncodeTrade is the trade stream message format.
func EncodeTrade(t domain.Trade) ([]byte, error) {
	return json.Marshal(newTradeDTO(&t))
}

// HoldingDTO is one valued position in the portfolio.
type HoldingDTO struct {
	Symbol            string      `json:"symbol"`
	Quantity          int64       `json:"quantity"`
	AveragePrice      json.Number `json:"averagePrice"`
	CurrentPrice      json.Number `json:"currentPrice"`
	CurrentValue      json.Number `json:"currentValue"`
	ProfitLoss        json.Number `json:"profitLoss"`
	ProfitLossPercent json.Number `json:"profitLossPercent"`
}

// SummaryDTO totals the portfolio.
type SummaryDTO struct {
	TotalValue             json.Number `json:"totalValue"`
	TotalInvested          json.Number `json:"totalInvested"`
	TotalProfitLoss        json.Number `json:"totalProfitLoss"`
	TotalProfitLossPercent json.Number `json:"totalProfitLossPercent"`
}

// PortfolioDTO is the body of GET /portfolio.
type PortfolioDTO struct {
	Holdings []HoldingDTO `json:"holdings"`
	Summary  SummaryDTO   `json:"summary"`
}

func newPortfolioDTO(r service.Report) PortfolioDTO {
	holdings := make([]HoldingDTO, 0, len(r.Holdings))
	for _, h := range r.Holdings {
		holdings = append(holdings, HoldingDTO{
			Symbol:            h.Symbol,
			Quantity:          h.Quantity,
			AveragePrice:      number(h.AveragePrice),
			CurrentPrice:      number(h.CurrentPrice),
			CurrentValue:      number(h.CurrentValue),
			ProfitLoss:        number(h.ProfitLoss),
			ProfitLossPercent: number(h.ProfitLossPercent),
		})
	}
	return PortfolioDTO{
		Holdings: holdings,
		Summary: SummaryDTO{
			TotalValue:             number(r.Summary.TotalValue),
			TotalInvested:          number(r.Summary.TotalInvested),
			TotalProfitLoss:        number(r.Summary.TotalProfitLoss),
			TotalProfitLossPercent: number(r.Summary.TotalProfitLossPercent),
		},
	}
}
