package ledger

import "time"

// BudgetPeriod is the cadence a budget window repeats at.
type BudgetPeriod int

const (
	PeriodDaily BudgetPeriod = iota
	PeriodWeekly
	PeriodMonthly
	PeriodYearly
	PeriodCnt
)

var periodNames = [PeriodCnt]string{"daily", "weekly", "monthly", "yearly"}

func (p BudgetPeriod) String() string {
	if p < 0 || p >= PeriodCnt {
		return "unknown"
	}
	return periodNames[p]
}

// ParseBudgetPeriod maps a period name to its BudgetPeriod.
func ParseBudgetPeriod(s string) (BudgetPeriod, bool) {
	for i, name := range periodNames {
		if name == s {
			return BudgetPeriod(i), true
		}
	}
	return PeriodMonthly, false
}

// BudgetState labels consumed spend against the limit. StatusAt means
// consumed equals the limit exactly, in minor units.
type BudgetState int

const (
	StatusUnder BudgetState = iota
	StatusAt
	StatusOver
)

func (s BudgetState) String() string {
	switch s {
	case StatusUnder:
		return "under"
	case StatusAt:
		return "at"
	case StatusOver:
		return "over"
	}
	return "unknown"
}

// BudgetReport is the evaluator output for one budget over one window.
type BudgetReport struct {
	Consumed  Money
	Remaining Money
	Status    BudgetState
}

// PeriodWindow resolves the half-open window [start, end) containing ref for
// the given cadence. Weeks start on Monday.
func PeriodWindow(period BudgetPeriod, ref time.Time) (time.Time, time.Time) {
	y, m, d := ref.Date()
	loc := ref.Location()

	switch period {
	case PeriodDaily:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1)
	case PeriodWeekly:
		weekday := int(ref.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday closes the week
		}
		start := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1-weekday)
		return start, start.AddDate(0, 0, 7)
	case PeriodYearly:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}

// EvaluateBudget sums the entries that fall inside [start, end) and match the
// optional category filter, then grades the consumed amount against limit.
// Remaining goes negative once the limit is exceeded. Overlapping budgets are
// evaluated independently by the caller.
func EvaluateBudget(limit Money, category *Category, start, end time.Time, entries []Entry) BudgetReport {
	var consumed Money
	for _, e := range entries {
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		if category != nil && e.Category != *category {
			continue
		}
		consumed += e.Amount
	}

	report := BudgetReport{
		Consumed:  consumed,
		Remaining: limit - consumed,
	}
	switch {
	case consumed < limit:
		report.Status = StatusUnder
	case consumed == limit:
		report.Status = StatusAt
	default:
		report.Status = StatusOver
	}
	return report
}
