package pricing

import (
	"errors"
	"fmt"
)

// Validation sentinels. The engine rejects malformed input before computing
// anything; degenerate arithmetic (zero denominators, missing rates) is NOT
// an error and resolves to documented defaults instead.
var (
	ErrUnknownAllocationMethod = errors.New("unknown allocation method")
	ErrNoShipmentItems         = errors.New("shipment has no items")
	ErrNegativeAmount          = errors.New("amount must not be negative")
	ErrNonPositiveQuantity     = errors.New("quantity must be greater than zero")
	ErrUnknownRoundingPolicy   = errors.New("unknown rounding policy")
	ErrNonPositiveDuration     = errors.New("plan duration must be greater than zero")
)

// ValidationError carries the offending field alongside the sentinel cause so
// callers can both branch with errors.Is and surface a specific reason string.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
