package limit

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// baseProfile is the profile from the reference scenarios: 50000 limit,
// 15000 spent, 5000 in installments, closing on the 20th.
func baseProfile() Profile {
	return Profile{
		TotalLimit:         dec("50000"),
		MonthSpend:         dec("15000"),
		ActiveInstallments: dec("5000"),
		ClosingDay:         20,
	}
}

// five full days before the closing date of baseProfile
var fiveDaysOut = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

func TestCalculateScenarios(t *testing.T) {
	t.Run("no expenses", func(t *testing.T) {
		res, err := Calculate(baseProfile(), fiveDaysOut)
		if err != nil {
			t.Fatal(err)
		}

		if !res.RealLimit.Equal(dec("30000")) {
			t.Errorf("RealLimit = %s, want 30000", res.RealLimit)
		}
		if res.DaysRemaining != 5 {
			t.Errorf("DaysRemaining = %d, want 5", res.DaysRemaining)
		}
		if !res.DailyAllowance.Equal(dec("6000")) {
			t.Errorf("DailyAllowance = %s, want 6000", res.DailyAllowance)
		}
		if !res.AvailableToday.Equal(dec("6000")) {
			t.Errorf("AvailableToday = %s, want 6000", res.AvailableToday)
		}
		if res.Status != StatusOK {
			t.Errorf("Status = %s, want ok", res.Status)
		}
	})

	t.Run("one expense leaves under 10 percent", func(t *testing.T) {
		p := baseProfile()
		p.TodayExpenses = []Expense{{ID: "1", Amount: dec("5500"), RecordedAt: fiveDaysOut}}

		res, err := Calculate(p, fiveDaysOut)
		if err != nil {
			t.Fatal(err)
		}

		if !res.AvailableToday.Equal(dec("500")) {
			t.Errorf("AvailableToday = %s, want 500", res.AvailableToday)
		}
		// 500 < 30000 * 0.1
		if res.Status != StatusWarning {
			t.Errorf("Status = %s, want warning", res.Status)
		}
	})

	t.Run("expenses exceed the allowance", func(t *testing.T) {
		p := baseProfile()
		p.TodayExpenses = []Expense{
			{ID: "1", Amount: dec("4000"), RecordedAt: fiveDaysOut},
			{ID: "2", Amount: dec("2500"), RecordedAt: fiveDaysOut},
		}

		res, err := Calculate(p, fiveDaysOut)
		if err != nil {
			t.Fatal(err)
		}

		if !res.AvailableToday.Equal(decimal.Zero) {
			t.Errorf("AvailableToday = %s, want 0", res.AvailableToday)
		}
		if !res.TodaySpent.Equal(dec("6500")) {
			t.Errorf("TodaySpent = %s, want 6500", res.TodaySpent)
		}
		if res.Status != StatusDanger {
			t.Errorf("Status = %s, want danger", res.Status)
		}
	})

	t.Run("closing day 1 always rolls to next month", func(t *testing.T) {
		p := Profile{TotalLimit: dec("10000"), ClosingDay: 1}
		// March 2nd -> next closing April 1st, 30 days out
		now := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)

		res, err := Calculate(p, now)
		if err != nil {
			t.Fatal(err)
		}

		if res.DaysRemaining != 30 {
			t.Errorf("DaysRemaining = %d, want 30", res.DaysRemaining)
		}
		if !res.DailyAllowance.Equal(dec("333.33")) {
			t.Errorf("DailyAllowance = %s, want 333.33", res.DailyAllowance)
		}
	})
}

func TestCalculateIdempotent(t *testing.T) {
	p := baseProfile()
	p.TodayExpenses = []Expense{{ID: "1", Amount: dec("123.45"), RecordedAt: fiveDaysOut}}

	first, err := Calculate(p, fiveDaysOut)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Calculate(p, fiveDaysOut)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("results differ for identical inputs")
		t.Logf("first:  %+v", first)
		t.Logf("second: %+v", second)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Profile)
		kind   ErrorKind
	}{
		{"zero total limit", func(p *Profile) { p.TotalLimit = decimal.Zero }, KindInvalidTotalLimit},
		{"negative total limit", func(p *Profile) { p.TotalLimit = dec("-1") }, KindInvalidTotalLimit},
		{"negative month spend", func(p *Profile) { p.MonthSpend = dec("-0.01") }, KindNegativeMonthSpend},
		{"negative installments", func(p *Profile) { p.ActiveInstallments = dec("-100") }, KindNegativeInstallments},
		{"closing day too low", func(p *Profile) { p.ClosingDay = 0 }, KindInvalidClosingDay},
		{"closing day too high", func(p *Profile) { p.ClosingDay = 32 }, KindInvalidClosingDay},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseProfile()
			tc.mutate(&p)

			err := Validate(p)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want *ValidationError", err)
			}
			if verr.Kind != tc.kind {
				t.Errorf("Kind = %s, want %s", verr.Kind, tc.kind)
			}
		})
	}

	t.Run("total limit failure wins regardless of other fields", func(t *testing.T) {
		p := Profile{TotalLimit: decimal.Zero, MonthSpend: dec("-5"), ClosingDay: 99}
		err := Validate(p)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Kind != KindInvalidTotalLimit {
			t.Errorf("got %v, want InvalidTotalLimit", err)
		}
	})

	t.Run("valid profile passes", func(t *testing.T) {
		if err := Validate(baseProfile()); err != nil {
			t.Error(err)
		}
	})
}

func TestDaysUntilClosing(t *testing.T) {
	utc := func(y int, m time.Month, d, h int) time.Time {
		return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	}

	t.Run("before the closing day", func(t *testing.T) {
		// the 15th at 10:00 against the 20th: 4d14h away, counts as 5
		if got := DaysUntilClosing(20, utc(2025, time.March, 15, 10)); got != 5 {
			t.Errorf("got %d, want 5", got)
		}
	})

	t.Run("closing day itself rolls to next month", func(t *testing.T) {
		got := DaysUntilClosing(20, utc(2025, time.March, 20, 0))
		if got != 31 {
			t.Errorf("got %d, want 31", got)
		}
	})

	t.Run("after the closing day", func(t *testing.T) {
		got := DaysUntilClosing(20, utc(2025, time.March, 25, 0))
		if got != 26 {
			t.Errorf("got %d, want 26", got)
		}
	})

	t.Run("day 31 clamps to the end of February", func(t *testing.T) {
		got := DaysUntilClosing(31, utc(2025, time.February, 10, 0))
		if got != 18 {
			t.Errorf("got %d, want 18", got)
		}
	})

	t.Run("clamped closing day still rolls when reached", func(t *testing.T) {
		// April 30th with closing day 31: April's clamped closing is the
		// 30th, already reached, so the next closing is May 31st.
		got := DaysUntilClosing(31, utc(2025, time.April, 30, 0))
		if got != 31 {
			t.Errorf("got %d, want 31", got)
		}
	})

	t.Run("monotonically non-increasing within a period", func(t *testing.T) {
		prev := DaysUntilClosing(20, utc(2025, time.March, 1, 0))
		for h := 6; h < 19*24; h += 6 {
			now := utc(2025, time.March, 1, 0).Add(time.Duration(h) * time.Hour)
			got := DaysUntilClosing(20, now)
			if got > prev {
				t.Fatalf("count increased from %d to %d at %s", prev, got, now)
			}
			prev = got
		}
	})
}

func TestDailyAllowanceZeroDays(t *testing.T) {
	if got := DailyAllowance(dec("30000"), 0); !got.Equal(decimal.Zero) {
		t.Errorf("got %s, want 0", got)
	}
}

func TestRealLimitNeverNegative(t *testing.T) {
	got := RealLimit(dec("1000"), dec("5000"), dec("3000"))
	if !got.Equal(decimal.Zero) {
		t.Errorf("got %s, want 0", got)
	}
}

func TestClassifyStatusOrder(t *testing.T) {
	// danger wins even when the warning disjunction would also trip
	if got := ClassifyStatus(decimal.Zero, dec("100"), 1); got != StatusDanger {
		t.Errorf("got %s, want danger", got)
	}
	// few days left trips warning even with a healthy balance
	if got := ClassifyStatus(dec("90"), dec("100"), 3); got != StatusWarning {
		t.Errorf("got %s, want warning", got)
	}
	if got := ClassifyStatus(dec("90"), dec("100"), 4); got != StatusOK {
		t.Errorf("got %s, want ok", got)
	}
}
