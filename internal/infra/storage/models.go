package storage

import (
	"fmt"
	"time"

	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

// OrderRecord is the orders table mapping.
// Decimals are stored as text to keep them exact.
type OrderRecord struct {
	ID             uint                `gorm:"primaryKey;autoIncrement"`
	OrderID        string              `gorm:"column:order_id;type:varchar(36);uniqueIndex;not null"`
	Symbol         string              `gorm:"column:symbol;type:varchar(20);index;not null"`
	Side           string              `gorm:"column:side;type:varchar(10);not null"`
	Style          string              `gorm:"column:style;type:varchar(10);not null"`
	Quantity       int64               `gorm:"column:quantity;not null"`
	LimitPrice     decimal.NullDecimal `gorm:"column:limit_price;type:varchar(64)"`
	Status         string              `gorm:"column:status;type:varchar(20);index;not null"`
	ExecutionPrice decimal.NullDecimal `gorm:"column:execution_price;type:varchar(64)"`
	CreatedAt      time.Time           `gorm:"column:created_at"`
	ExecutedAt     *time.Time          `gorm:"column:executed_at"`
}

func (OrderRecord) TableName() string { return "orders" }

// TradeRecord is the trades table mapping.
type TradeRecord struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	TradeID    string          `gorm:"column:trade_id;type:varchar(36);uniqueIndex;not null"`
	OrderID    string          `gorm:"column:order_id;type:varchar(36);index;not null"`
	Symbol     string          `gorm:"column:symbol;type:varchar(20);index;not null"`
	Side       string          `gorm:"column:side;type:varchar(10);not null"`
	Quantity   int64           `gorm:"column:quantity;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:varchar(64);not null"`
	TotalValue decimal.Decimal `gorm:"column:total_value;type:varchar(64);not null"`
	ExecutedAt time.Time       `gorm:"column:executed_at;not null"`
}

func (TradeRecord) TableName() string { return "trades" }

// mapping helpers

func toOrderRecord(o *domain.Order) *OrderRecord {
	return &OrderRecord{
		OrderID:        o.ID,
		Symbol:         o.Symbol,
		Side:           o.Side.String(),
		Style:          o.Style.String(),
		Quantity:       o.Quantity,
		LimitPrice:     o.LimitPrice,
		Status:         o.Status.String(),
		ExecutionPrice: o.ExecutionPrice,
		CreatedAt:      o.CreatedAt,
		ExecutedAt:     o.ExecutedAt,
	}
}

func toOrder(m *OrderRecord) (*domain.Order, error) {
	side, err := domain.ParseSide(m.Side)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", m.OrderID, err)
	}
	style, err := domain.ParseStyle(m.Style)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", m.OrderID, err)
	}
	status, err := domain.ParseStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", m.OrderID, err)
	}
	return &domain.Order{
		ID:             m.OrderID,
		Symbol:         m.Symbol,
		Side:           side,
		Style:          style,
		Quantity:       m.Quantity,
		LimitPrice:     m.LimitPrice,
		Status:         status,
		CreatedAt:      m.CreatedAt,
		ExecutedAt:     m.ExecutedAt,
		ExecutionPrice: m.ExecutionPrice,
	}, nil
}

func toTradeRecord(t *domain.Trade) *TradeRecord {
	return &TradeRecord{
		TradeID:    t.ID,
		OrderID:    t.OrderID,
		Symbol:     t.Symbol,
		Side:       t.Side.String(),
		Quantity:   t.Quantity,
		Price:      t.Price,
		TotalValue: t.TotalValue,
		ExecutedAt: t.ExecutedAt,
	}
}

func toTrade(m *TradeRecord) (*domain.Trade, error) {
	side, err := domain.ParseSide(m.Side)
	if err != nil {
		return nil, fmt.Errorf("trade %s: %w", m.TradeID, err)
	}
	return &domain.Trade{
		ID:         m.TradeID,
		OrderID:    m.OrderID,
		Symbol:     m.Symbol,
		Side:       side,
		Quantity:   m.Quantity,
		Price:      m.Price,
		TotalValue: m.TotalValue,
		ExecutedAt: m.ExecutedAt,
	}, nil
}
