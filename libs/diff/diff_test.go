package diff

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
)

func TestExpenseChangesReportsChangedFields(t *testing.T) {
	creator := uuid.New()
	flatID := uuid.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	before := db.Expense{
		ID:        uuid.New(),
		Name:      "Groceries",
		Amount:    ledger.Money(4200),
		Category:  ledger.CategoryGroceries,
		Kind:      db.KindShared,
		Date:      date,
		CreatedBy: creator,
		FlatID:    flatID,
	}
	after := before
	after.Name = "Weekly groceries"
	after.Amount = ledger.Money(4650)

	changes, err := ExpenseChanges(before, after)
	if err != nil {
		t.Fatalf("ExpenseChanges failed: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("Expected 2 changes, got %d: %+v", len(changes), changes)
	}

	byField := map[string][2]string{}
	for _, c := range changes {
		byField[c.Field] = [2]string{c.From, c.To}
	}
	if got, ok := byField["Name"]; !ok || got[0] != "Groceries" || got[1] != "Weekly groceries" {
		t.Errorf("Name change wrong: %v (present: %t)", got, ok)
	}
	if _, ok := byField["Amount"]; !ok {
		t.Errorf("Amount change missing: %+v", changes)
	}
}

func TestExpenseChangesNoChange(t *testing.T) {
	e := db.Expense{
		ID:        uuid.New(),
		Name:      "Rent",
		Amount:    ledger.Money(85000),
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: uuid.New(),
		FlatID:    uuid.New(),
	}
	changes, err := ExpenseChanges(e, e)
	if err != nil {
		t.Fatalf("ExpenseChanges failed: %v", err)
	}
	if changes != nil {
		t.Errorf("Expected nil changes for identical expenses, got %+v", changes)
	}
}

func TestUUIDComparerSingleUpdate(t *testing.T) {
	type holder struct {
		Owner uuid.UUID
	}
	a := holder{Owner: uuid.New()}
	b := holder{Owner: uuid.New()}

	changelog, err := GetCustomDiffer().Diff(a, b)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	// One update for the field, not sixteen for the bytes.
	if len(changelog) != 1 {
		t.Fatalf("Expected 1 change, got %d: %+v", len(changelog), changelog)
	}
	if changelog[0].Path[0] != "Owner" {
		t.Errorf("Expected path Owner, got %v", changelog[0].Path)
	}
}

func TestTimeComparerEqualInstants(t *testing.T) {
	type holder struct {
		At time.Time
	}
	utc := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cet := utc.In(time.FixedZone("CET", 3600))

	changelog, err := GetCustomDiffer().Diff(holder{At: utc}, holder{At: cet})
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(changelog) != 0 {
		t.Errorf("Equal instants in different zones reported as changed: %+v", changelog)
	}
}
