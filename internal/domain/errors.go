package domain

import (
	"errors"
	"fmt"
	"time"
)

// DataUnavailableError signals a missing exchange rate or price history.
// Exposure calculation aborts on it; volatility estimation logs it and
// falls back to defaults instead.
type DataUnavailableError struct {
	Currency Currency
	Resource string // "exchange_rate" or "price_history"
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no %s available for %s", e.Resource, e.Currency)
}

// IsDataUnavailable reports whether err is (or wraps) a DataUnavailableError
func IsDataUnavailable(err error) bool {
	var target *DataUnavailableError
	return errors.As(err, &target)
}

// CalculationError carries context for an unexpected numeric failure.
// The caller decides whether to retry with a fresh calculation.
type CalculationError struct {
	Operation string
	UserID    string
	Timestamp time.Time
	Err       error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation %q failed for user %s at %s: %v",
		e.Operation, e.UserID, e.Timestamp.Format(time.RFC3339), e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

// NewCalculationError wraps err with operation context
func NewCalculationError(operation, userID string, err error) *CalculationError {
	return &CalculationError{
		Operation: operation,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}
