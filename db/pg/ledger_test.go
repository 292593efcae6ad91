package pg

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbt "flatfin/db/db"
	"flatfin/ledger"
)

var testDB *gorm.DB
var ledgerDB dbt.LedgerDBWrapper

// initTest connects to the database named by DATABASE_URL; tests are skipped
// when no database is configured.
func initTest(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL store tests")
	}

	var err error
	testDB, err = InitPostgresGORM(CreateDSN())
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	ledgerDB = NewGORMLedgerDBWrapper(testDB)
}

func cleanupTest() {
	log.Println("Cleaning up test database...")
	testDB.Exec("DELETE FROM expense_splits;")
	testDB.Exec("DELETE FROM expenses;")
	testDB.Exec("DELETE FROM flat_members;")
	testDB.Exec("DELETE FROM flats;")
	testDB.Exec("DELETE FROM users;")
	testDB.Exec("DELETE FROM reminders;")
	testDB.Exec("DELETE FROM budgets;")
	log.Println("Test database cleaned.")
	CloseGORM(testDB)
}

func TestPutGetExpense(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	memberA := uuid.New()
	memberB := uuid.New()
	expense := &dbt.Expense{
		ID:          uuid.New(),
		Name:        "Weekly groceries",
		Amount:      4500,
		Category:    ledger.CategoryGroceries,
		Kind:        dbt.KindShared,
		Date:        time.Now().UTC().Truncate(time.Second),
		CreatedBy:   memberA,
		FlatID:      uuid.New(),
		SplitMethod: dbt.SplitEqual,
		Splits:      map[uuid.UUID]ledger.Money{memberA: 2250, memberB: 2250},
	}

	err := ledgerDB.PutExpense(expense)
	require.NoError(t, err, "PutExpense should not return an error")

	retrieved, err := ledgerDB.GetExpense(expense.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.Name, retrieved.Name)
	assert.Equal(t, expense.Amount, retrieved.Amount)
	assert.Equal(t, expense.Splits, retrieved.Splits)

	// Replacing by id swaps the split set.
	expense.Splits = map[uuid.UUID]ledger.Money{memberA: 4500}
	expense.SplitMethod = dbt.SplitCustom
	require.NoError(t, ledgerDB.PutExpense(expense))

	retrieved, err = ledgerDB.GetExpense(expense.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]ledger.Money{memberA: 4500}, retrieved.Splits)

	// Unknown id.
	_, err = ledgerDB.GetExpense(uuid.New())
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestDeleteExpensePG(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	expense := &dbt.Expense{
		ID:        uuid.New(),
		Name:      "One-off",
		Amount:    100,
		Category:  ledger.CategoryOther,
		Kind:      dbt.KindPersonal,
		Date:      time.Now().UTC(),
		CreatedBy: uuid.New(),
	}
	require.NoError(t, ledgerDB.PutExpense(expense))

	require.NoError(t, ledgerDB.DeleteExpense(expense.ID))
	_, err := ledgerDB.GetExpense(expense.ID)
	assert.ErrorIs(t, err, dbt.ErrNotFound)

	err = ledgerDB.DeleteExpense(expense.ID)
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestQueryExpensesPG(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	owner := uuid.New()
	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for day, amount := range map[int]ledger.Money{1: 100, 5: 200, 10: 300} {
		require.NoError(t, ledgerDB.PutExpense(&dbt.Expense{
			ID:        uuid.New(),
			Name:      "expense",
			Amount:    amount,
			Category:  ledger.CategoryFood,
			Kind:      dbt.KindPersonal,
			Date:      base.AddDate(0, 0, day-1),
			CreatedBy: owner,
		}))
	}

	result, err := ledgerDB.QueryExpenses(context.Background(), dbt.ExpenseFilter{CreatedBy: owner})
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.True(t, result[0].Date.After(result[1].Date), "results should be newest first")

	start := base.AddDate(0, 0, 4)
	end := base.AddDate(0, 0, 9)
	result, err = ledgerDB.QueryExpenses(context.Background(), dbt.ExpenseFilter{CreatedBy: owner, Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, ledger.Money(200), result[0].Amount)
}

func TestFlatLifecyclePG(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	creator := uuid.New()
	flatmate := uuid.New()
	flat := &dbt.Flat{
		ID:        uuid.New(),
		Name:      "Test Flat",
		JoinCode:  dbt.NewJoinCode(),
		CreatedBy: creator,
		Members:   []uuid.UUID{creator},
		FixedCosts: dbt.FixedCosts{
			Rent:       120000,
			RentDueDay: 1,
		},
	}
	require.NoError(t, ledgerDB.CreateFlat(flat))

	retrieved, err := ledgerDB.GetFlatByCode(flat.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, flat.ID, retrieved.ID)
	assert.Equal(t, ledger.Money(120000), retrieved.FixedCosts.Rent)

	// Membership add is idempotent.
	require.NoError(t, ledgerDB.FlatMemberAdd(flat.ID, flatmate))
	require.NoError(t, ledgerDB.FlatMemberAdd(flat.ID, flatmate))
	retrieved, err = ledgerDB.GetFlat(flat.ID)
	require.NoError(t, err)
	assert.Len(t, retrieved.Members, 2)

	// Removal is idempotent; last member stays.
	require.NoError(t, ledgerDB.FlatMemberRemove(flat.ID, flatmate))
	require.NoError(t, ledgerDB.FlatMemberRemove(flat.ID, flatmate))
	err = ledgerDB.FlatMemberRemove(flat.ID, creator)
	assert.Error(t, err)

	require.NoError(t, ledgerDB.DeleteFlat(flat.ID))
	_, err = ledgerDB.GetFlat(flat.ID)
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestUserEmailUniquePG(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	user := &dbt.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, ledgerDB.CreateUser(user))

	dup := &dbt.User{ID: uuid.New(), Name: "Fake Alice", Email: "alice@example.com"}
	err := ledgerDB.CreateUser(dup)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	retrieved, err := ledgerDB.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
}

func TestReminderStatusMachinePG(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	reminder := &dbt.Reminder{
		ID:      uuid.New(),
		Title:   "Rent",
		Type:    dbt.ReminderRent,
		Amount:  80000,
		DueDate: time.Now().UTC().AddDate(0, 0, 3),
		Status:  dbt.StatusPending,
		UserID:  uuid.New(),
	}
	require.NoError(t, ledgerDB.PutReminder(reminder))

	require.NoError(t, ledgerDB.UpdateReminderStatus(reminder.ID, dbt.StatusSnoozed))
	require.NoError(t, ledgerDB.UpdateReminderStatus(reminder.ID, dbt.StatusPaid))

	err := ledgerDB.UpdateReminderStatus(reminder.ID, dbt.StatusPending)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already paid")
}

func TestListBudgetsPG(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	owner := uuid.New()
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	closed := start.AddDate(0, 3, 0)
	groceries := ledger.CategoryGroceries

	require.NoError(t, ledgerDB.PutBudget(&dbt.Budget{
		ID: uuid.New(), UserID: owner, Limit: 50000, Period: ledger.PeriodMonthly, StartDate: start,
	}))
	require.NoError(t, ledgerDB.PutBudget(&dbt.Budget{
		ID: uuid.New(), UserID: owner, Category: &groceries, Limit: 20000,
		Period: ledger.PeriodMonthly, StartDate: start, EndDate: &closed,
	}))

	result, err := ledgerDB.ListBudgets(owner, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Len(t, result, 2)

	result, err = ledgerDB.ListBudgets(owner, start.AddDate(0, 6, 0))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Nil(t, result[0].Category)
}
