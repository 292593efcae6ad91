package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
)

const dateLayout = "2006-01-02"

// WriteReportCSV renders a report as one CSV document with section-tagged
// rows: the period total and previous-period total, the category breakdown,
// the zero-filled trend series, and the top entries.
func WriteReportCSV(w io.Writer, report ledger.Report, previousTotal ledger.Money) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"section", "label", "date", "amount"},
		{"total", "", "", report.Total.String()},
		{"previous_total", "", "", previousTotal.String()},
	}

	// Categories in enum order so output is stable across runs.
	for c := ledger.Category(0); c < ledger.CategoryCnt; c++ {
		amount, ok := report.ByCategory[c]
		if !ok {
			continue
		}
		rows = append(rows, []string{"category", c.String(), "", amount.String()})
	}

	for _, point := range report.Trend {
		rows = append(rows, []string{"trend", point.Label, "", point.Total.String()})
	}

	for _, entry := range report.Top {
		rows = append(rows, []string{"top", entry.Name, entry.Date.Format(dateLayout), entry.Amount.String()})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write report CSV: %w", err)
	}
	return nil
}

// ParseEntriesCSV parses expense rows (name, amount, category, date) into
// report entries. The first row is treated as a header.
func ParseEntriesCSV(csvContent [][]string) ([]ledger.Entry, error) {
	if len(csvContent) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	// skip the header row
	dataRows := csvContent[1:]

	var entries []ledger.Entry
	for i, row := range dataRows {
		if len(row) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, but got %d", i+2, len(row)) // +2 to account for the header row
		}

		amount, err := ledger.ParseMoney(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse amount '%s': %w", i+2, row[1], err)
		}

		category, ok := ledger.ParseCategory(strings.TrimSpace(row[2]))
		if !ok {
			return nil, fmt.Errorf("row %d: unknown category '%s'", i+2, row[2])
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse date '%s': %w", i+2, row[3], err)
		}

		entries = append(entries, ledger.Entry{
			ID:       uuid.New(),
			Name:     row[0],
			Amount:   amount,
			Category: category,
			Date:     date,
		})
	}

	return entries, nil
}

// WriteUserExport renders everything stored for one user as one CSV document
// with section-tagged rows: profile, expenses, reminders and budgets.
func WriteUserExport(w io.Writer, user db.User, expenses []db.Expense, reminders []db.Reminder, budgets []db.Budget) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"section", "id", "name", "amount", "category", "date", "extra"},
		{"user", user.ID.String(), user.Name, "", "", "", user.Email},
	}

	for _, e := range expenses {
		rows = append(rows, []string{
			"expense", e.ID.String(), e.Name, e.Amount.String(),
			e.Category.String(), e.Date.Format(dateLayout), e.Kind.String(),
		})
	}

	for _, r := range reminders {
		rows = append(rows, []string{
			"reminder", r.ID.String(), r.Title, r.Amount.String(),
			r.Type.String(), r.DueDate.Format(dateLayout), r.Status.String(),
		})
	}

	for _, b := range budgets {
		category := ""
		if b.Category != nil {
			category = b.Category.String()
		}
		rows = append(rows, []string{
			"budget", b.ID.String(), "", b.Limit.String(),
			category, b.StartDate.Format(dateLayout), b.Period.String(),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write user export CSV: %w", err)
	}
	return nil
}
