package limit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProfileRepo persists the single profile record.
type ProfileRepo interface {
	// Get returns the stored profile or ErrNotFound.
	Get(ctx context.Context) (Profile, error)
	Save(ctx context.Context, p Profile) error
}

// Domain owns the profile lifecycle: configuration, the daily expense log
// and period resets. Every mutation is a read-modify-write over the single
// record, serialized with a mutex so concurrent callers (bot, API, cron)
// cannot lose updates.
type Domain struct {
	mu   sync.Mutex
	repo ProfileRepo
	log  *logrus.Logger
}

func NewDomain(repo ProfileRepo, log *logrus.Logger) *Domain {
	return &Domain{repo: repo, log: log}
}

// Profile returns the stored record as-is, or ErrNotFound.
func (d *Domain) Profile(ctx context.Context) (Profile, error) {
	return d.repo.Get(ctx)
}

// Configure validates and stores a fresh profile, clearing the day log,
// and returns the calculation for it.
func (d *Domain) Configure(ctx context.Context, p Profile, now time.Time) (Result, error) {
	if err := Validate(p); err != nil {
		return Result{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p.TodayExpenses = nil
	if err := d.repo.Save(ctx, p); err != nil {
		return Result{}, fmt.Errorf("repo.Save: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"total_limit": p.TotalLimit,
		"closing_day": p.ClosingDay,
	}).Info("profile configured")

	return Calculate(p, now)
}

// Overview loads the profile and computes the current result.
func (d *Domain) Overview(ctx context.Context, now time.Time) (Result, error) {
	p, err := d.configured(ctx)
	if err != nil {
		return Result{}, err
	}
	return Calculate(p, now)
}

// AddExpense appends a spend to today's log and returns the recorded
// expense together with the updated calculation.
func (d *Domain) AddExpense(ctx context.Context, amount decimal.Decimal, now time.Time) (Expense, Result, error) {
	if !amount.IsPositive() {
		return Expense{}, Result{}, ErrInvalidAmount
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.configured(ctx)
	if err != nil {
		return Expense{}, Result{}, err
	}

	exp := Expense{
		ID:         uuid.NewString(),
		Amount:     amount,
		RecordedAt: now,
	}
	p.TodayExpenses = append(p.TodayExpenses, exp)

	if err := d.repo.Save(ctx, p); err != nil {
		return Expense{}, Result{}, fmt.Errorf("repo.Save: %w", err)
	}

	d.log.WithField("amount", amount).Info("expense recorded")

	res, err := Calculate(p, now)
	if err != nil {
		return Expense{}, Result{}, err
	}
	return exp, res, nil
}

// RemoveExpense deletes a single expense from today's log by ID.
func (d *Domain) RemoveExpense(ctx context.Context, id string, now time.Time) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.configured(ctx)
	if err != nil {
		return Result{}, err
	}

	idx := -1
	for i, e := range p.TodayExpenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, ErrExpenseNotFound
	}
	p.TodayExpenses = append(p.TodayExpenses[:idx], p.TodayExpenses[idx+1:]...)

	if err := d.repo.Save(ctx, p); err != nil {
		return Result{}, fmt.Errorf("repo.Save: %w", err)
	}

	return Calculate(p, now)
}

// UndoLastExpense removes the most recent expense of the day. It returns
// the removed expense so callers can confirm what was undone.
func (d *Domain) UndoLastExpense(ctx context.Context, now time.Time) (Expense, Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.configured(ctx)
	if err != nil {
		return Expense{}, Result{}, err
	}

	if len(p.TodayExpenses) == 0 {
		return Expense{}, Result{}, ErrExpenseNotFound
	}
	last := p.TodayExpenses[len(p.TodayExpenses)-1]
	p.TodayExpenses = p.TodayExpenses[:len(p.TodayExpenses)-1]

	if err := d.repo.Save(ctx, p); err != nil {
		return Expense{}, Result{}, fmt.Errorf("repo.Save: %w", err)
	}

	d.log.WithField("amount", last.Amount).Info("expense undone")

	res, err := Calculate(p, now)
	if err != nil {
		return Expense{}, Result{}, err
	}
	return last, res, nil
}

// ResetMonth starts a new statement period: month spend goes back to zero
// and the day log is cleared. Limit and installments are kept.
func (d *Domain) ResetMonth(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.configured(ctx)
	if err != nil {
		return err
	}

	p.MonthSpend = decimal.Zero
	p.TodayExpenses = nil

	if err := d.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("repo.Save: %w", err)
	}

	d.log.Info("month reset")
	return nil
}

// RolloverDay folds today's expenses into the committed month spend and
// clears the day log. Meant to run once at local midnight.
func (d *Domain) RolloverDay(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.repo.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("repo.Get: %w", err)
	}
	if !p.Configured() || len(p.TodayExpenses) == 0 {
		return nil
	}

	spent := TodaySpent(p.TodayExpenses)
	p.MonthSpend = p.MonthSpend.Add(spent)
	p.TodayExpenses = nil

	if err := d.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("repo.Save: %w", err)
	}

	d.log.WithField("amount", spent).Info("day rolled over into month spend")
	return nil
}

func (d *Domain) configured(ctx context.Context) (Profile, error) {
	p, err := d.repo.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrNotConfigured
	}
	if err != nil {
		return Profile{}, fmt.Errorf("repo.Get: %w", err)
	}
	if !p.Configured() {
		return Profile{}, ErrNotConfigured
	}
	return p, nil
}
