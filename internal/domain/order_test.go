package domain

import (
	"errors"
	"testing"
	"time"
)

func TestEnums_RoundTrip(t *testing.T) {
	for _, s := range []Side{SideBuy, SideSell} {
		got, err := ParseSide(s.String())
		if err != nil || got != s {
			t.Errorf("ParseSide(%q) = %v, %v", s.String(), got, err)
		}
	}
	for _, s := range []Style{StyleMarket, StyleLimit} {
		got, err := ParseStyle(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStyle(%q) = %v, %v", s.String(), got, err)
		}
	}
	for _, s := range []Status{StatusNew, StatusPlaced, StatusExecuted, StatusCancelled} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), got, err)
		}
	}

	if _, err := ParseSide("buy"); err == nil {
		t.Error("ParseSide should be case sensitive")
	}
	if Side(0).String() != "UNKNOWN" {
		t.Errorf("Zero Side should be UNKNOWN, got %s", Side(0))
	}
}

func TestOrder_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("market order", func(t *testing.T) {
		o := NewOrder("o-1", OrderTicket{Symbol: "AAPL", Side: SideBuy, Style: StyleMarket, Quantity: 10}, now)
		if o.Status != StatusNew {
			t.Fatalf("Expected NEW, got %s", o.Status)
		}
		if o.LimitPrice.Valid {
			t.Error("MARKET order must not carry a limit price")
		}

		if err := o.Place(); err != nil {
			t.Fatalf("Place failed: %v", err)
		}
		if err := o.Execute(d("175.50"), now.Add(time.Second)); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !o.IsExecuted() {
			t.Error("Order should be executed")
		}
		if o.ExecutedAt == nil || !o.ExecutedAt.Equal(now.Add(time.Second)) {
			t.Errorf("Unexpected executedAt: %v", o.ExecutedAt)
		}
		if !o.ExecutionPrice.Valid || !o.ExecutionPrice.Decimal.Equal(d("175.50")) {
			t.Errorf("Unexpected execution price: %v", o.ExecutionPrice)
		}
	})

	t.Run("limit order keeps its price", func(t *testing.T) {
		o := NewOrder("o-2", OrderTicket{Symbol: "AAPL", Side: SideBuy, Style: StyleLimit, Quantity: 1, LimitPrice: d("170")}, now)
		if !o.LimitPrice.Valid || !o.LimitPrice.Decimal.Equal(d("170")) {
			t.Errorf("Unexpected limit price: %v", o.LimitPrice)
		}
	})

	t.Run("illegal transitions", func(t *testing.T) {
		o := NewOrder("o-3", OrderTicket{Symbol: "AAPL", Side: SideBuy, Style: StyleMarket, Quantity: 1}, now)
		if err := o.Execute(d("1"), now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Execute on NEW should fail, got %v", err)
		}
		o.Place()
		if err := o.Place(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Place on PLACED should fail, got %v", err)
		}
		o.Execute(d("1"), now)
		if err := o.Execute(d("2"), now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Execute on EXECUTED should fail, got %v", err)
		}
		if !o.ExecutionPrice.Decimal.Equal(d("1")) {
			t.Error("Failed transition must not change the execution price")
		}
	})
}

func TestNewTrade(t *testing.T) {
	now := time.Now().UTC()
	o := NewOrder("o-1", OrderTicket{Symbol: "RELIANCE", Side: SideSell, Style: StyleMarket, Quantity: 5}, now)

	if _, err := NewTrade("t-0", o); err == nil {
		t.Fatal("NewTrade should fail for an unexecuted order")
	}

	o.Place()
	o.Execute(d("175.50"), now)

	tr, err := NewTrade("t-1", o)
	if err != nil {
		t.Fatalf("NewTrade failed: %v", err)
	}
	if tr.OrderID != "o-1" || tr.Side != SideSell || tr.Quantity != 5 {
		t.Errorf("Unexpected trade: %+v", tr)
	}
	if !tr.TotalValue.Equal(d("877.50")) {
		t.Errorf("Expected total value 877.50, got %s", tr.TotalValue)
	}
	if !tr.ExecutedAt.Equal(*o.ExecutedAt) {
		t.Errorf("Trade time %v differs from order time %v", tr.ExecutedAt, o.ExecutedAt)
	}
}
