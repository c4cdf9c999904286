// Package limit computes the "real" daily spending limit of a credit card:
// how much of the card's limit is actually left once committed spend and
// installments are discounted, spread over the days remaining until the
// statement closes.
package limit

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// warningShare is the fraction of the real limit below which today's
// remainder is considered low.
var warningShare = decimal.RequireFromString("0.1")

// warningDays is the days-to-closing threshold that trips a warning on its
// own, regardless of balance.
const warningDays = 3

// Validate checks the user-provided profile fields in a fixed order and
// returns the first *ValidationError found, or nil.
func Validate(p Profile) error {
	if !p.TotalLimit.IsPositive() {
		return &ValidationError{
			Kind:    KindInvalidTotalLimit,
			Message: "total limit must be greater than 0",
		}
	}
	if p.MonthSpend.IsNegative() {
		return &ValidationError{
			Kind:    KindNegativeMonthSpend,
			Message: "month spend cannot be negative",
		}
	}
	if p.ActiveInstallments.IsNegative() {
		return &ValidationError{
			Kind:    KindNegativeInstallments,
			Message: "active installments cannot be negative",
		}
	}
	if p.ClosingDay < 1 || p.ClosingDay > 31 {
		return &ValidationError{
			Kind:    KindInvalidClosingDay,
			Message: "closing day must be between 1 and 31",
		}
	}
	return nil
}

// DaysUntilClosing returns the whole days from now until the next statement
// closing date, at calendar-day granularity in now's location.
//
// The closing day is clamped to the last day of the target month, so a
// closing day of 31 closes on Feb 28/29, Apr 30, etc. When today is on or
// after the (clamped) closing day the period has already closed and the
// count rolls to the next month: the closing day itself yields a full next
// period, never zero.
func DaysUntilClosing(closingDay int, now time.Time) int {
	year, month, day := now.Date()
	closing := closingDate(year, month, closingDay, now.Location())
	if day >= closing.Day() {
		closing = closingDate(year, month+1, closingDay, now.Location())
	}

	days := int(math.Ceil(closing.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// closingDate builds the closing date at local midnight, clamping day to
// the month's length. month may be out of range; time.Date normalizes it.
func closingDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// RealLimit is the credit actually left for the period, never negative.
func RealLimit(totalLimit, monthSpend, activeInstallments decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, totalLimit.Sub(monthSpend).Sub(activeInstallments))
}

// DailyAllowance spreads the real limit evenly over the remaining days.
// Zero days remaining yields a zero allowance rather than a division fault.
func DailyAllowance(realLimit decimal.Decimal, daysRemaining int) decimal.Decimal {
	if daysRemaining <= 0 {
		return decimal.Zero
	}
	return realLimit.Div(decimal.NewFromInt(int64(daysRemaining)))
}

// TodaySpent sums today's expense log.
func TodaySpent(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// AvailableToday is today's allowance minus what was already spent today,
// never negative.
func AvailableToday(dailyAllowance decimal.Decimal, expenses []Expense) decimal.Decimal {
	return decimal.Max(decimal.Zero, dailyAllowance.Sub(TodaySpent(expenses)))
}

// ClassifyStatus maps the current figures to a tri-state status. The danger
// check short-circuits; the warning rule trips on either a low remaining
// balance (under 10% of the real limit) or few days left.
func ClassifyStatus(availableToday, realLimit decimal.Decimal, daysRemaining int) Status {
	if !availableToday.IsPositive() {
		return StatusDanger
	}
	if availableToday.LessThan(realLimit.Mul(warningShare)) || daysRemaining <= warningDays {
		return StatusWarning
	}
	return StatusOK
}

// Calculate validates the profile and derives the full result for the given
// instant. It is pure and idempotent: identical inputs yield identical
// results. Status is classified on unrounded figures; monetary outputs are
// rounded to 2 decimal places only at the end.
func Calculate(p Profile, now time.Time) (Result, error) {
	if err := Validate(p); err != nil {
		return Result{}, err
	}

	daysRemaining := DaysUntilClosing(p.ClosingDay, now)
	realLimit := RealLimit(p.TotalLimit, p.MonthSpend, p.ActiveInstallments)
	dailyAllowance := DailyAllowance(realLimit, daysRemaining)
	todaySpent := TodaySpent(p.TodayExpenses)
	availableToday := decimal.Max(decimal.Zero, dailyAllowance.Sub(todaySpent))
	status := ClassifyStatus(availableToday, realLimit, daysRemaining)

	return Result{
		RealLimit:      realLimit.Round(2),
		DaysRemaining:  daysRemaining,
		DailyAllowance: dailyAllowance.Round(2),
		TodaySpent:     todaySpent.Round(2),
		AvailableToday: availableToday.Round(2),
		Status:         status,
	}, nil
}
