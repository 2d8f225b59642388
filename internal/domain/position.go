package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Position is the aggregated holding for one symbol under
// weighted-average-cost accounting.
// Invariant: AveragePrice == TotalInvested / Quantity while Quantity > 0.
type Position struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
}

// Apply folds one execution into the position.
// It returns closed=true when a SELL brings the quantity to exactly zero;
// the caller is expected to drop the position in that case.
// Realized profit/loss of a SELL is not recorded anywhere.
func (p *Position) Apply(side Side, qty int64, price decimal.Decimal) (closed bool, err error) {
	if qty <= 0 {
		return false, fmt.Errorf("%w: quantity %d", ErrInvalidQuantity, qty)
	}

	switch side {
	case SideBuy:
		if p.Quantity > math.MaxInt64-qty {
			return false, fmt.Errorf("%w: %d held plus %d overflows", ErrInvalidQuantity, p.Quantity, qty)
		}
		p.TotalInvested = p.TotalInvested.Add(price.Mul(decimal.NewFromInt(qty)))
		p.Quantity += qty
		p.AveragePrice = p.TotalInvested.Div(decimal.NewFromInt(p.Quantity))
		return false, nil

	case SideSell:
		if qty > p.Quantity {
			return false, &HoldingsError{Symbol: p.Symbol, Available: p.Quantity, Requested: qty}
		}
		p.Quantity -= qty
		if p.Quantity == 0 {
			p.AveragePrice = decimal.Zero
			p.TotalInvested = decimal.Zero
			return true, nil
		}
		// Average cost basis is unchanged by a sell.
		p.TotalInvested = p.AveragePrice.Mul(decimal.NewFromInt(p.Quantity))
		return false, nil

	default:
		return false, fmt.Errorf("unsupported side: %v", side)
	}
}

// Ledger holds one position per symbol.
// It is not safe for concurrent use; the engine owns it.
type Ledger struct {
	positions map[string]*Position
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		positions: make(map[string]*Position),
	}
}

// Position returns a copy of the position for symbol.
func (l *Ledger) Position(symbol string) (Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Quantity returns the held quantity for symbol, 0 when there is no position.
func (l *Ledger) Quantity(symbol string) int64 {
	if p, ok := l.positions[symbol]; ok {
		return p.Quantity
	}
	return 0
}

// Preview computes the position that would result from an execution
// without mutating the ledger.
func (l *Ledger) Preview(symbol string, side Side, qty int64, price decimal.Decimal) (Position, bool, error) {
	next, ok := l.Position(symbol)
	if !ok {
		next = Position{Symbol: symbol, AveragePrice: decimal.Zero, TotalInvested: decimal.Zero}
	}
	closed, err := next.Apply(side, qty, price)
	if err != nil {
		return Position{}, false, err
	}
	return next, closed, nil
}

// Commit stores a previewed position, or removes it when closed.
func (l *Ledger) Commit(p Position, closed bool) {
	if closed {
		delete(l.positions, p.Symbol)
		return
	}
	l.positions[p.Symbol] = &p
}

// Apply previews and commits an execution in one step.
func (l *Ledger) Apply(symbol string, side Side, qty int64, price decimal.Decimal) error {
	next, closed, err := l.Preview(symbol, side, qty, price)
	if err != nil {
		return err
	}
	l.Commit(next, closed)
	return nil
}

// Len returns the number of open positions.
func (l *Ledger) Len() int {
	return len(l.positions)
}

// Snapshot returns a copy of all positions sorted by symbol.
func (l *Ledger) Snapshot() []Position {
	result := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}
