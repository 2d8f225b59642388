package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side int

const (
	SideBuy Side = iota + 1
	SideSell
)

// String returns the wire representation of Side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// ParseSide parses the wire representation of a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("unknown side: %q", s)
	}
}

// Style is the pricing style of an order.
type Style int

const (
	StyleMarket Style = iota + 1
	StyleLimit
)

// String returns the wire representation of Style
func (s Style) String() string {
	switch s {
	case StyleMarket:
		return "MARKET"
	case StyleLimit:
		return "LIMIT"
	default:
		return "UNKNOWN"
	}
}

// ParseStyle parses the wire representation of a Style.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "MARKET":
		return StyleMarket, nil
	case "LIMIT":
		return StyleLimit, nil
	default:
		return 0, fmt.Errorf("unknown style: %q", s)
	}
}

// Status is the lifecycle state of an order.
type Status int

const (
	StatusNew Status = iota + 1
	StatusPlaced
	StatusExecuted
	StatusCancelled // reserved, no code path reaches it
)

// String returns the wire representation of Status
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPlaced:
		return "PLACED"
	case StatusExecuted:
		return "EXECUTED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus parses the wire representation of a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "NEW":
		return StatusNew, nil
	case "PLACED":
		return StatusPlaced, nil
	case "EXECUTED":
		return StatusExecuted, nil
	case "CANCELLED":
		return StatusCancelled, nil
	default:
		return 0, fmt.Errorf("unknown status: %q", s)
	}
}

// Order represents a request to buy or sell an instrument.
// LimitPrice is set only for LIMIT orders; ExecutedAt and ExecutionPrice
// are set once the order has been executed.
type Order struct {
	ID             string
	Symbol         string
	Side           Side
	Style          Style
	Quantity       int64
	LimitPrice     decimal.NullDecimal
	Status         Status
	CreatedAt      time.Time
	ExecutedAt     *time.Time
	ExecutionPrice decimal.NullDecimal
}

// NewOrder creates an order in status NEW from a validated ticket.
func NewOrder(id string, t OrderTicket, createdAt time.Time) *Order {
	o := &Order{
		ID:        id,
		Symbol:    t.Symbol,
		Side:      t.Side,
		Style:     t.Style,
		Quantity:  t.Quantity,
		Status:    StatusNew,
		CreatedAt: createdAt,
	}
	if t.Style == StyleLimit {
		o.LimitPrice = decimal.NewNullDecimal(t.LimitPrice)
	}
	return o
}

// Place moves the order from NEW to PLACED.
func (o *Order) Place() error {
	if o.Status != StatusNew {
		return &TransitionError{OrderID: o.ID, From: o.Status, To: StatusPlaced}
	}
	o.Status = StatusPlaced
	return nil
}

// Execute fills the order in full at price and moves it to EXECUTED.
func (o *Order) Execute(price decimal.Decimal, at time.Time) error {
	if o.Status != StatusPlaced {
		return &TransitionError{OrderID: o.ID, From: o.Status, To: StatusExecuted}
	}
	o.Status = StatusExecuted
	o.ExecutedAt = &at
	o.ExecutionPrice = decimal.NewNullDecimal(price)
	return nil
}

// IsExecuted reports whether the order has been filled.
func (o *Order) IsExecuted() bool {
	return o.Status == StatusExecuted
}
