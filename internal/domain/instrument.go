package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Instrument is a tradable symbol with its last traded reference price.
type Instrument struct {
	Symbol          string          `json:"symbol" yaml:"symbol"`
	Exchange        string          `json:"exchange" yaml:"exchange"`
	InstrumentType  string          `json:"instrumentType" yaml:"instrument_type"`
	LastTradedPrice decimal.Decimal `json:"lastTradedPrice" yaml:"last_traded_price"`
}

// DefaultInstruments returns the built-in instrument list used when the
// configuration does not declare one.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "AAPL", Exchange: "NASDAQ", InstrumentType: "STOCK", LastTradedPrice: decimal.RequireFromString("175.50")},
		{Symbol: "GOOGL", Exchange: "NASDAQ", InstrumentType: "STOCK", LastTradedPrice: decimal.RequireFromString("140.25")},
		{Symbol: "MSFT", Exchange: "NASDAQ", InstrumentType: "STOCK", LastTradedPrice: decimal.RequireFromString("380.00")},
		{Symbol: "TSLA", Exchange: "NASDAQ", InstrumentType: "STOCK", LastTradedPrice: decimal.RequireFromString("245.75")},
		{Symbol: "AMZN", Exchange: "NASDAQ", InstrumentType: "STOCK", LastTradedPrice: decimal.RequireFromString("155.30")},
		{Symbol: "RELIANCE", Exchange: "NSE", InstrumentType: "STOCK", LastTradedPrice: decimal.RequireFromString("175.50")},
	}
}

// Catalog is the immutable list of tradable instruments.
// It is safe for concurrent reads.
type Catalog struct {
	instruments []Instrument
	bySymbol    map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate symbols.
func NewCatalog(instruments []Instrument) (*Catalog, error) {
	c := &Catalog{
		instruments: make([]Instrument, 0, len(instruments)),
		bySymbol:    make(map[string]int, len(instruments)),
	}
	for _, inst := range instruments {
		if inst.Symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol", ErrInvalidSymbol)
		}
		if _, dup := c.bySymbol[inst.Symbol]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %s", ErrInvalidSymbol, inst.Symbol)
		}
		if !inst.LastTradedPrice.IsPositive() {
			return nil, fmt.Errorf("instrument %s: last traded price must be positive", inst.Symbol)
		}
		c.bySymbol[inst.Symbol] = len(c.instruments)
		c.instruments = append(c.instruments, inst)
	}
	return c, nil
}

// Lookup returns the instrument for symbol.
func (c *Catalog) Lookup(symbol string) (Instrument, bool) {
	i, ok := c.bySymbol[symbol]
	if !ok {
		return Instrument{}, false
	}
	return c.instruments[i], true
}

// All returns a copy of the instruments in declaration order.
func (c *Catalog) All() []Instrument {
	out := make([]Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Len returns the number of instruments.
func (c *Catalog) Len() int {
	return len(c.instruments)
}
