package domain

import (
	"context"
)

// ExecutionRepository defines how orders and trades are recorded.
// GetOrder returns (nil, nil) for an unknown id.
type ExecutionRepository interface {
	SaveExecution(ctx context.Context, order *Order, trade *Trade) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context) ([]*Order, error)
	ListTrades(ctx context.Context) ([]*Trade, error)
}

// TradePublisher receives every trade once it has been recorded.
type TradePublisher interface {
	PublishTrade(trade Trade)
}
