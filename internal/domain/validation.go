package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// Number is an optional numeric request field.
// A JSON null or an absent key leaves it unset; any other JSON value marks it
// present, and numeric only when it is a bare JSON number.
type Number struct {
	present bool
	numeric bool
	value   decimal.Decimal
}

// NewNumber returns a present numeric field.
func NewNumber(v decimal.Decimal) Number {
	return Number{present: true, numeric: true, value: v}
}

// NonNumeric returns a present field that did not hold a number.
func NonNumeric() Number {
	return Number{present: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = Number{}
		return nil
	}
	*n = Number{present: true}
	if strings.HasPrefix(s, `"`) {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	n.numeric = true
	n.value = d
	return nil
}

// Present reports whether the field was supplied.
func (n Number) Present() bool { return n.present }

// Decimal returns the value and whether the field held a number.
func (n Number) Decimal() (decimal.Decimal, bool) { return n.value, n.present && n.numeric }

// OrderRequest is the request schema of an order submission.
// Symbol, Side and Style are nil when absent.
type OrderRequest struct {
	Symbol   *string `json:"symbol"`
	Side     *string `json:"orderType"`
	Style    *string `json:"orderStyle"`
	Quantity Number  `json:"quantity"`
	Price    Number  `json:"price"`
}

// OrderTicket is an order request that passed validation.
// LimitPrice is zero for MARKET orders.
type OrderTicket struct {
	Symbol     string
	Side       Side
	Style      Style
	Quantity   int64
	LimitPrice decimal.Decimal
}

// HoldingsReader exposes the held quantity per symbol.
type HoldingsReader interface {
	Quantity(symbol string) int64
}

// ValidateOrder checks req against the catalog and current holdings.
// It returns every violation found; an empty list means the ticket is valid.
// When a required field is missing, only the missing-field errors are reported.
func ValidateOrder(req OrderRequest, catalog *Catalog, holdings HoldingsReader) (OrderTicket, []string) {
	var errs []string

	if req.Symbol == nil {
		errs = append(errs, "Missing required field: symbol")
	}
	if req.Side == nil {
		errs = append(errs, "Missing required field: orderType")
	}
	if req.Style == nil {
		errs = append(errs, "Missing required field: orderStyle")
	}
	if !req.Quantity.Present() {
		errs = append(errs, "Missing required field: quantity")
	}
	if len(errs) > 0 {
		return OrderTicket{}, errs
	}

	ticket := OrderTicket{Symbol: *req.Symbol}

	qtyOK := false
	qty, numeric := req.Quantity.Decimal()
	switch {
	case !numeric || !qty.IsInteger():
		errs = append(errs, "Quantity must be a whole number")
	case !qty.IsPositive():
		errs = append(errs, "Quantity must be greater than 0")
	case qty.GreaterThan(maxQuantity):
		errs = append(errs, "Quantity exceeds maximum allowed")
	default:
		ticket.Quantity = qty.IntPart()
		qtyOK = true
	}

	side, err := ParseSide(*req.Side)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Invalid orderType. Must be one of: [%s %s]", SideBuy, SideSell))
	}
	ticket.Side = side

	style, err := ParseStyle(*req.Style)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Invalid orderStyle. Must be one of: [%s %s]", StyleMarket, StyleLimit))
	}
	ticket.Style = style

	if style == StyleLimit {
		price, numeric := req.Price.Decimal()
		switch {
		case !req.Price.Present():
			errs = append(errs, "Price is mandatory for LIMIT orders")
		case !numeric:
			errs = append(errs, "Price must be a number")
		case !price.IsPositive():
			errs = append(errs, "Price must be greater than 0")
		default:
			ticket.LimitPrice = price
		}
	}

	_, known := catalog.Lookup(ticket.Symbol)
	if !known {
		errs = append(errs, fmt.Sprintf("Instrument %s not found", ticket.Symbol))
	}

	if side == SideBuy && known && qtyOK {
		if holdings.Quantity(ticket.Symbol) > math.MaxInt64-ticket.Quantity {
			errs = append(errs, "Quantity exceeds maximum allowed")
		}
	}

	if side == SideSell && known && qtyOK {
		if held := holdings.Quantity(ticket.Symbol); held < ticket.Quantity {
			errs = append(errs, (&HoldingsError{Symbol: ticket.Symbol, Available: held, Requested: ticket.Quantity}).Error())
		}
	}

	if len(errs) > 0 {
		return OrderTicket{}, errs
	}
	return ticket, nil
}
