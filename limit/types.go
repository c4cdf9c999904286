package limit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status classifies how the user is doing against today's allowance.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Expense is a single spend registered today. Expenses are append-only
// during a statement period and removable individually (undo).
type Expense struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Profile carries the user-provided card parameters and today's spend log.
// It is passed by value into the engine on every calculation.
type Profile struct {
	TotalLimit         decimal.Decimal `json:"total_limit"`
	MonthSpend         decimal.Decimal `json:"month_spend"`
	ActiveInstallments decimal.Decimal `json:"active_installments"`
	ClosingDay         int             `json:"closing_day"`
	TodayExpenses      []Expense       `json:"today_expenses"`
}

// Configured reports whether the profile has ever been set up.
func (p Profile) Configured() bool {
	return p.TotalLimit.IsPositive()
}

// Result is the derived state. It is recomputed on demand and never stored
// as authoritative data.
type Result struct {
	RealLimit      decimal.Decimal `json:"real_limit"`
	DaysRemaining  int             `json:"days_remaining"`
	DailyAllowance decimal.Decimal `json:"daily_allowance"`
	TodaySpent     decimal.Decimal `json:"today_spent"`
	AvailableToday decimal.Decimal `json:"available_today"`
	Status         Status          `json:"status"`
}
