package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable record of an order's execution.
type Trade struct {
	ID         string
	OrderID    string
	Symbol     string
	Side       Side
	Quantity   int64
	Price      decimal.Decimal
	TotalValue decimal.Decimal
	ExecutedAt time.Time
}

// NewTrade builds the trade for an executed order.
// TotalValue is always Price × Quantity.
func NewTrade(id string, o *Order) (*Trade, error) {
	if !o.IsExecuted() || o.ExecutedAt == nil || !o.ExecutionPrice.Valid {
		return nil, fmt.Errorf("order %s is not executed", o.ID)
	}
	price := o.ExecutionPrice.Decimal
	return &Trade{
		ID:         id,
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   o.Quantity,
		Price:      price,
		TotalValue: price.Mul(decimal.NewFromInt(o.Quantity)),
		ExecutedAt: *o.ExecutedAt,
	}, nil
}
