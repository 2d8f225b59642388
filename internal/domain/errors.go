package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError carries every violation found in an order request.
// No state is mutated when it is returned.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError creates a ValidationError from a list of messages.
func NewValidationError(errs []string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HoldingsError is returned when a SELL exceeds the held quantity.
type HoldingsError struct {
	Symbol    string
	Available int64
	Requested int64
}

func (e *HoldingsError) Error() string {
	return fmt.Sprintf("Insufficient holdings for %s: available %d, requested %d",
		e.Symbol, e.Available, e.Requested)
}

func (e *HoldingsError) Unwrap() error {
	return ErrInsufficientHoldings
}

// TransitionError is returned on an illegal order status change.
type TransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return "order " + e.OrderID + ": cannot move from " + e.From.String() + " to " + e.To.String()
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

var (
	// ErrOrderNotFound is returned when an order id is unknown.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidSymbol is returned when a symbol is not supported or malformed.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidQuantity is returned when a quantity is not strictly positive.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientHoldings is returned when a SELL exceeds the position.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrInvalidTransition is returned on an illegal order status change.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrInternal is returned when the engine fails to process a command.
	ErrInternal = errors.New("internal error")
)
