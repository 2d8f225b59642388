package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError([]string{"Missing required field: symbol", "Missing required field: quantity"})

	expected := "validation failed: Missing required field: symbol; Missing required field: quantity"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}

	t.Run("IsValidation helper", func(t *testing.T) {
		wrapped := fmt.Errorf("place order: %w", err)
		if !IsValidation(wrapped) {
			t.Error("IsValidation should return true for wrapped ValidationError")
		}
		if IsValidation(errors.New("plain error")) {
			t.Error("IsValidation should return false for plain error")
		}
	})
}

func TestHoldingsError(t *testing.T) {
	err := &HoldingsError{Symbol: "AAPL", Available: 3, Requested: 5}

	expected := "Insufficient holdings for AAPL: available 3, requested 5"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInsufficientHoldings) {
		t.Error("Expected error to wrap ErrInsufficientHoldings")
	}
}

func TestTransitionError(t *testing.T) {
	err := &TransitionError{OrderID: "o-1", From: StatusExecuted, To: StatusPlaced}

	expected := "order o-1: cannot move from EXECUTED to PLACED"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("Expected error to wrap ErrInvalidTransition")
	}
}
