package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func reportEntry(id byte, name string, amount Money, category Category, day int) Entry {
	return Entry{
		ID:       uuid.UUID{15: id},
		Name:     name,
		Amount:   amount,
		Category: category,
		Date:     time.Date(2026, time.June, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildReportMonthlyExample(t *testing.T) {
	// $50 groceries on the 2nd, $800 rent on the 5th, $75 electricity on the
	// 10th. Every view of the month must total $925.
	entries := []Entry{
		reportEntry(1, "groceries", 5000, CategoryGroceries, 2),
		reportEntry(2, "rent", 80000, CategoryRent, 5),
		reportEntry(3, "electricity", 7500, CategoryElectricity, 10),
	}
	period := ReportPeriod{Year: 2026, Month: time.June}

	report := BuildReport(entries, GranularityDaily, period, 2, time.UTC)

	if report.Total != 92500 {
		t.Errorf("Total = %d, want 92500", report.Total)
	}

	expectedByCategory := map[Category]Money{
		CategoryGroceries:   5000,
		CategoryRent:        80000,
		CategoryElectricity: 7500,
	}
	if len(report.ByCategory) != len(expectedByCategory) {
		t.Errorf("ByCategory has %d categories, want %d", len(report.ByCategory), len(expectedByCategory))
	}
	for category, want := range expectedByCategory {
		if report.ByCategory[category] != want {
			t.Errorf("ByCategory[%s] = %d, want %d", category, report.ByCategory[category], want)
		}
	}

	if len(report.Trend) != 30 {
		t.Fatalf("Trend has %d buckets, want 30 for June", len(report.Trend))
	}
	if report.Trend[0].Label != "01" || report.Trend[29].Label != "30" {
		t.Errorf("Trend labels = %q..%q, want 01..30", report.Trend[0].Label, report.Trend[29].Label)
	}
	if report.Trend[1].Total != 5000 || report.Trend[4].Total != 80000 || report.Trend[9].Total != 7500 {
		t.Errorf("Trend buckets 02/05/10 = %d/%d/%d, want 5000/80000/7500",
			report.Trend[1].Total, report.Trend[4].Total, report.Trend[9].Total)
	}

	if len(report.Top) != 2 {
		t.Fatalf("Top has %d entries, want 2", len(report.Top))
	}
	if report.Top[0].Name != "rent" || report.Top[1].Name != "electricity" {
		t.Errorf("Top = %s, %s, want rent, electricity", report.Top[0].Name, report.Top[1].Name)
	}
}

func TestBuildReportViewsPartitionTheSameTotal(t *testing.T) {
	entries := []Entry{
		reportEntry(1, "a", 333, CategoryFood, 1),
		reportEntry(2, "b", 9999, CategoryRent, 15),
		reportEntry(3, "c", 1, CategoryOther, 30),
		reportEntry(4, "d", 4200, CategoryFood, 15),
		// Outside the period, must not skew any view.
		{ID: uuid.UUID{15: 5}, Name: "stale", Amount: 77777, Category: CategoryRent,
			Date: time.Date(2026, time.May, 31, 23, 0, 0, 0, time.UTC)},
	}
	period := ReportPeriod{Year: 2026, Month: time.June}

	report := BuildReport(entries, GranularityDaily, period, len(entries), time.UTC)

	var byCategory, byTrend, byTop Money
	for _, amount := range report.ByCategory {
		byCategory += amount
	}
	for _, point := range report.Trend {
		byTrend += point.Total
	}
	for _, e := range report.Top {
		byTop += e.Amount
	}

	if byCategory != report.Total || byTrend != report.Total || byTop != report.Total {
		t.Errorf("views disagree: total=%d categories=%d trend=%d top=%d",
			report.Total, byCategory, byTrend, byTop)
	}
	if report.Total != 333+9999+1+4200 {
		t.Errorf("Total = %d, want %d", report.Total, 333+9999+1+4200)
	}
}

func TestBuildReportYearly(t *testing.T) {
	entries := []Entry{
		{ID: uuid.UUID{15: 1}, Name: "jan", Amount: 100, Category: CategoryFood,
			Date: time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.UUID{15: 2}, Name: "dec", Amount: 200, Category: CategoryFood,
			Date: time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC)},
		{ID: uuid.UUID{15: 3}, Name: "next year", Amount: 999, Category: CategoryFood,
			Date: time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	report := BuildReport(entries, GranularityMonthly, ReportPeriod{Year: 2026}, 5, time.UTC)

	if report.Total != 300 {
		t.Errorf("Total = %d, want 300", report.Total)
	}
	if len(report.Trend) != 12 {
		t.Fatalf("Trend has %d buckets, want 12", len(report.Trend))
	}
	if report.Trend[0].Label != "Jan" || report.Trend[11].Label != "Dec" {
		t.Errorf("Trend labels = %q..%q, want Jan..Dec", report.Trend[0].Label, report.Trend[11].Label)
	}
	if report.Trend[0].Total != 100 || report.Trend[11].Total != 200 {
		t.Errorf("Jan/Dec buckets = %d/%d, want 100/200", report.Trend[0].Total, report.Trend[11].Total)
	}
	if report.Trend[5].Total != 0 {
		t.Errorf("empty bucket = %d, want 0", report.Trend[5].Total)
	}
}

func TestBuildReportTopTieBreaks(t *testing.T) {
	early := reportEntry(9, "early", 500, CategoryFood, 3)
	late := reportEntry(1, "late", 500, CategoryFood, 20)
	entries := []Entry{late, early}

	report := BuildReport(entries, GranularityDaily, ReportPeriod{Year: 2026, Month: time.June}, 2, time.UTC)

	if len(report.Top) != 2 || report.Top[0].Name != "early" {
		t.Errorf("equal amounts should rank the earlier entry first, got %+v", report.Top)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, GranularityDaily, ReportPeriod{Year: 2026, Month: time.February}, 5, time.UTC)

	if report.Total != 0 {
		t.Errorf("Total = %d, want 0", report.Total)
	}
	if len(report.ByCategory) != 0 {
		t.Errorf("ByCategory = %+v, want empty", report.ByCategory)
	}
	if len(report.Trend) != 28 {
		t.Errorf("Trend has %d buckets, want 28 for February 2026", len(report.Trend))
	}
	if len(report.Top) != 0 {
		t.Errorf("Top = %+v, want empty", report.Top)
	}
}

func TestReportPeriodPrevious(t *testing.T) {
	tests := []struct {
		name        string
		granularity Granularity
		period      ReportPeriod
		expected    ReportPeriod
	}{
		{
			name:        "Mid year month",
			granularity: GranularityDaily,
			period:      ReportPeriod{Year: 2026, Month: time.June},
			expected:    ReportPeriod{Year: 2026, Month: time.May},
		},
		{
			name:        "January wraps to previous December",
			granularity: GranularityDaily,
			period:      ReportPeriod{Year: 2026, Month: time.January},
			expected:    ReportPeriod{Year: 2025, Month: time.December},
		},
		{
			name:        "Yearly",
			granularity: GranularityMonthly,
			period:      ReportPeriod{Year: 2026},
			expected:    ReportPeriod{Year: 2025},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Previous(tt.granularity); got != tt.expected {
				t.Errorf("Previous() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
