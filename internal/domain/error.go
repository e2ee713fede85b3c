package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrUnsupportedMethod     = errors.New("unsupported payment method")
	ErrMissingRequiredOption = errors.New("missing required payment option")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// InvalidAmountError carries the method and the ceiling that was exceeded so
// callers can render a precise rejection message. errors.Is matches it
// against ErrInvalidAmount.
type InvalidAmountError struct {
	Method string
	Amount int64
	Limit  int64
}

func (e *InvalidAmountError) Error() string {
	if e.Amount <= 0 {
		return fmt.Sprintf("invalid amount %d for %s: amount must be positive", e.Amount, e.Method)
	}
	return fmt.Sprintf("invalid amount %d for %s: limit is %d", e.Amount, e.Method, e.Limit)
}

func (e *InvalidAmountError) Is(target error) bool { return target == ErrInvalidAmount }
