package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
)

func TestParseEntriesCSV(t *testing.T) {
	input := [][]string{
		{"name", "amount", "category", "date"},
		{"Rent March", "800.00", "rent", "2026-03-01"},
		{"Groceries", "52.505", "groceries", "2026-03-14"},
	}

	entries, err := ParseEntriesCSV(input)
	if err != nil {
		t.Fatalf("ParseEntriesCSV failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Amount != 80000 || entries[0].Category != ledger.CategoryRent {
		t.Errorf("First entry parsed wrong: %+v", entries[0])
	}
	// Third decimal rounds half-up.
	if entries[1].Amount != 5251 {
		t.Errorf("Expected 5251 cents for 52.505, got %d", entries[1].Amount)
	}
	if !entries[1].Date.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date parsed wrong: %v", entries[1].Date)
	}
}

func TestParseEntriesCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input [][]string
	}{
		{"empty", nil},
		{"wrong column count", [][]string{{"h"}, {"only", "three", "cols"}}},
		{"bad amount", [][]string{{"h", "h", "h", "h"}, {"x", "-5", "rent", "2026-03-01"}}},
		{"unknown category", [][]string{{"h", "h", "h", "h"}, {"x", "5.00", "gambling", "2026-03-01"}}},
		{"bad date", [][]string{{"h", "h", "h", "h"}, {"x", "5.00", "rent", "March 1st"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEntriesCSV(tt.input); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}

func TestWriteReportCSVSections(t *testing.T) {
	entries := []ledger.Entry{
		{ID: uuid.New(), Name: "Rent March", Amount: 80000, Category: ledger.CategoryRent, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), Name: "Electricity", Amount: 7500, Category: ledger.CategoryElectricity, Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), Name: "Groceries", Amount: 5000, Category: ledger.CategoryGroceries, Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
	}
	report := ledger.BuildReport(entries, ledger.GranularityDaily, ledger.ReportPeriod{Year: 2026, Month: time.March}, 2, time.UTC)

	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, report, 12300); err != nil {
		t.Fatalf("WriteReportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	counts := map[string]int{}
	var totalRow, prevRow []string
	for _, row := range rows[1:] {
		counts[row[0]]++
		switch row[0] {
		case "total":
			totalRow = row
		case "previous_total":
			prevRow = row
		}
	}

	if totalRow == nil || totalRow[3] != "925.00" {
		t.Errorf("Total row wrong: %v", totalRow)
	}
	if prevRow == nil || prevRow[3] != "123.00" {
		t.Errorf("Previous total row wrong: %v", prevRow)
	}
	if counts["category"] != 3 {
		t.Errorf("Expected 3 category rows, got %d", counts["category"])
	}
	// March has 31 daily buckets, all present.
	if counts["trend"] != 31 {
		t.Errorf("Expected 31 trend rows, got %d", counts["trend"])
	}
	if counts["top"] != 2 {
		t.Errorf("Expected 2 top rows, got %d", counts["top"])
	}

	// Top entries come amount-descending: rent then electricity.
	var topNames []string
	for _, row := range rows[1:] {
		if row[0] == "top" {
			topNames = append(topNames, row[1])
		}
	}
	if strings.Join(topNames, ",") != "Rent March,Electricity" {
		t.Errorf("Top rows out of order: %v", topNames)
	}
}

func TestWriteUserExport(t *testing.T) {
	userID := uuid.New()
	user := db.User{ID: userID, Name: "Alice", Email: "alice@example.com"}
	category := ledger.CategoryGroceries
	expenses := []db.Expense{{
		ID: uuid.New(), Name: "Groceries", Amount: 5000,
		Category: ledger.CategoryGroceries, Kind: db.KindPersonal,
		Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), CreatedBy: userID,
	}}
	reminders := []db.Reminder{{
		ID: uuid.New(), Title: "Rent due", Type: db.ReminderRent, Amount: 80000,
		DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:  db.StatusPending, UserID: userID,
	}}
	budgets := []db.Budget{{
		ID: uuid.New(), UserID: userID, Category: &category, Limit: 20000,
		Period: ledger.PeriodMonthly, StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := WriteUserExport(&buf, user, expenses, reminders, budgets); err != nil {
		t.Fatalf("WriteUserExport failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 5 { // header + user + expense + reminder + budget
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	if rows[1][0] != "user" || rows[1][6] != "alice@example.com" {
		t.Errorf("User row wrong: %v", rows[1])
	}
	if rows[2][0] != "expense" || rows[2][3] != "50.00" || rows[2][6] != "personal" {
		t.Errorf("Expense row wrong: %v", rows[2])
	}
	if rows[3][0] != "reminder" || rows[3][6] != "pending" {
		t.Errorf("Reminder row wrong: %v", rows[3])
	}
	if rows[4][0] != "budget" || rows[4][4] != "groceries" || rows[4][6] != "monthly" {
		t.Errorf("Budget row wrong: %v", rows[4])
	}
}
