package ledger

import (
	"fmt"
	"sort"
	"time"
)

// Granularity selects the trend bucketing: daily buckets over one month, or
// monthly buckets over one year.
type Granularity int

const (
	GranularityDaily Granularity = iota
	GranularityMonthly
)

// ReportPeriod is the reference period a report covers. Month is ignored for
// GranularityMonthly, where the period is the whole year.
type ReportPeriod struct {
	Year  int
	Month time.Month
}

// Window resolves the half-open period window [start, end) in loc.
func (p ReportPeriod) Window(g Granularity, loc *time.Location) (time.Time, time.Time) {
	if g == GranularityDaily {
		start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}

// Previous steps the period back by one month or one year.
func (p ReportPeriod) Previous(g Granularity) ReportPeriod {
	if g == GranularityDaily {
		if p.Month == time.January {
			return ReportPeriod{Year: p.Year - 1, Month: time.December}
		}
		return ReportPeriod{Year: p.Year, Month: p.Month - 1}
	}
	return ReportPeriod{Year: p.Year - 1}
}

// TrendPoint is one bucket of the trend series.
type TrendPoint struct {
	Label string
	Total Money
}

// Report carries the three derived views over one period. The category
// breakdown, the trend series and the full entry set partition the same
// total three ways.
type Report struct {
	Total      Money
	ByCategory map[Category]Money
	Trend      []TrendPoint
	Top        []Entry
}

// BuildReport aggregates the entries falling inside the period into a
// category breakdown (zero categories omitted), a gap-free trend series
// (every bucket present, zero-filled, in bucket order), and the topN largest
// entries (amount descending, ties broken by earlier date, then by id).
// Entries outside the period window are ignored so the three views always
// agree on the total.
func BuildReport(entries []Entry, g Granularity, period ReportPeriod, topN int, loc *time.Location) Report {
	start, end := period.Window(g, loc)

	var inPeriod []Entry
	for _, e := range entries {
		d := e.Date.In(loc)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		inPeriod = append(inPeriod, e)
	}

	report := Report{
		ByCategory: make(map[Category]Money),
		Trend:      emptyTrend(g, period, loc),
	}

	for _, e := range inPeriod {
		report.Total += e.Amount
		report.ByCategory[e.Category] += e.Amount

		d := e.Date.In(loc)
		idx := d.Day() - 1
		if g == GranularityMonthly {
			idx = int(d.Month()) - 1
		}
		report.Trend[idx].Total += e.Amount
	}

	sort.Slice(inPeriod, func(i, j int) bool {
		a, b := inPeriod[i], inPeriod[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID.String() < b.ID.String()
	})
	if topN > len(inPeriod) {
		topN = len(inPeriod)
	}
	if topN > 0 {
		report.Top = append(report.Top, inPeriod[:topN]...)
	}

	return report
}

// emptyTrend lays out the zero-filled bucket series for the period: "01".."31"
// day labels for a month, "Jan".."Dec" for a year.
func emptyTrend(g Granularity, period ReportPeriod, loc *time.Location) []TrendPoint {
	if g == GranularityDaily {
		first := time.Date(period.Year, period.Month, 1, 0, 0, 0, 0, loc)
		days := first.AddDate(0, 1, -1).Day()
		trend := make([]TrendPoint, days)
		for i := range trend {
			trend[i].Label = fmt.Sprintf("%02d", i+1)
		}
		return trend
	}
	trend := make([]TrendPoint, 12)
	for i := range trend {
		trend[i].Label = time.Month(i + 1).String()[:3]
	}
	return trend
}
