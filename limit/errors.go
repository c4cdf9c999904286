package limit

import "errors"

// ErrorKind identifies which profile field failed validation.
type ErrorKind string

const (
	KindInvalidTotalLimit    ErrorKind = "invalid_total_limit"
	KindNegativeMonthSpend   ErrorKind = "negative_month_spend"
	KindNegativeInstallments ErrorKind = "negative_installments"
	KindInvalidClosingDay    ErrorKind = "invalid_closing_day"
)

// ValidationError is a caller-input error. The engine reports the first
// failure found and never aggregates.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrNotConfigured is returned by profile operations before the first
// successful configuration.
var ErrNotConfigured = errors.New("profile is not configured yet")

// ErrInvalidAmount is returned when an expense amount is not positive.
var ErrInvalidAmount = errors.New("expense amount must be greater than 0")

// ErrExpenseNotFound is returned when removing an expense that is not in
// today's log.
var ErrExpenseNotFound = errors.New("expense not found")

// ErrNotFound is returned by a ProfileRepo when no record has been saved.
var ErrNotFound = errors.New("not found")
