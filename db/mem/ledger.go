package mem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	dbt "flatfin/db/db"
	"flatfin/ledger"
)

// inMemoryLedgerDBWrapper is an in-memory implementation of
// dbt.LedgerDBWrapper. It uses maps keyed by id for quick lookups and keeps
// secondary indexes for join codes and emails.
type inMemoryLedgerDBWrapper struct {
	expenses  map[uuid.UUID]*dbt.Expense
	flats     map[uuid.UUID]*dbt.Flat
	flatCodes map[string]uuid.UUID
	users     map[uuid.UUID]*dbt.User
	emails    map[string]uuid.UUID
	reminders map[uuid.UUID]*dbt.Reminder
	budgets   map[uuid.UUID]*dbt.Budget

	// Mutex for thread-safety; readers always receive copies.
	mu sync.RWMutex
}

// NewInMemoryLedgerDBWrapper creates and returns a new instance of
// inMemoryLedgerDBWrapper.
func NewInMemoryLedgerDBWrapper() dbt.LedgerDBWrapper {
	return &inMemoryLedgerDBWrapper{
		expenses:  make(map[uuid.UUID]*dbt.Expense),
		flats:     make(map[uuid.UUID]*dbt.Flat),
		flatCodes: make(map[string]uuid.UUID),
		users:     make(map[uuid.UUID]*dbt.User),
		emails:    make(map[string]uuid.UUID),
		reminders: make(map[uuid.UUID]*dbt.Reminder),
		budgets:   make(map[uuid.UUID]*dbt.Budget),
	}
}

func copyExpense(e *dbt.Expense) *dbt.Expense {
	expenseCopy := *e
	if e.Splits != nil {
		expenseCopy.Splits = make(map[uuid.UUID]ledger.Money, len(e.Splits))
		for member, share := range e.Splits {
			expenseCopy.Splits[member] = share
		}
	}
	return &expenseCopy
}

func copyFlat(f *dbt.Flat) *dbt.Flat {
	flatCopy := *f
	flatCopy.Members = make([]uuid.UUID, len(f.Members))
	copy(flatCopy.Members, f.Members)
	return &flatCopy
}

func copyBudget(b *dbt.Budget) *dbt.Budget {
	budgetCopy := *b
	if b.Category != nil {
		category := *b.Category
		budgetCopy.Category = &category
	}
	if b.EndDate != nil {
		end := *b.EndDate
		budgetCopy.EndDate = &end
	}
	return &budgetCopy
}

// PutExpense inserts or replaces an expense by id.
func (db *inMemoryLedgerDBWrapper) PutExpense(expense *dbt.Expense) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.expenses[expense.ID] = copyExpense(expense)
	return nil
}

// GetExpense retrieves an expense by id.
func (db *inMemoryLedgerDBWrapper) GetExpense(id uuid.UUID) (*dbt.Expense, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	expense, exists := db.expenses[id]
	if !exists {
		return nil, fmt.Errorf("expense with ID %s: %w", id, dbt.ErrNotFound)
	}
	return copyExpense(expense), nil
}

// DeleteExpense removes an expense; deleting an unknown id is an error.
func (db *inMemoryLedgerDBWrapper) DeleteExpense(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.expenses[id]; !exists {
		return fmt.Errorf("expense with ID %s: %w", id, dbt.ErrNotFound)
	}
	delete(db.expenses, id)
	return nil
}

func matchExpense(e *dbt.Expense, filter dbt.ExpenseFilter) bool {
	if filter.CreatedBy != uuid.Nil && e.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.FlatID != uuid.Nil && e.FlatID != filter.FlatID {
		return false
	}
	if filter.Category != nil && e.Category != *filter.Category {
		return false
	}
	if filter.Kind != nil && e.Kind != *filter.Kind {
		return false
	}
	if filter.Start != nil && e.Date.Before(*filter.Start) {
		return false
	}
	if filter.End != nil && !e.Date.Before(*filter.End) {
		return false
	}
	return true
}

// QueryExpenses returns the expenses matching the filter, newest first.
func (db *inMemoryLedgerDBWrapper) QueryExpenses(ctx context.Context, filter dbt.ExpenseFilter) ([]dbt.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]dbt.Expense, 0)
	for _, expense := range db.expenses {
		if matchExpense(expense, filter) {
			result = append(result, *copyExpense(expense))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// CreateFlat creates a new flat. The join code must be unused.
func (db *inMemoryLedgerDBWrapper) CreateFlat(flat *dbt.Flat) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.flats[flat.ID]; exists {
		return fmt.Errorf("flat with ID %s already exists", flat.ID)
	}
	if _, exists := db.flatCodes[flat.JoinCode]; exists {
		return fmt.Errorf("join code %s already exists", flat.JoinCode)
	}

	db.flats[flat.ID] = copyFlat(flat)
	db.flatCodes[flat.JoinCode] = flat.ID
	return nil
}

// GetFlat retrieves a flat by id.
func (db *inMemoryLedgerDBWrapper) GetFlat(id uuid.UUID) (*dbt.Flat, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	flat, exists := db.flats[id]
	if !exists {
		return nil, fmt.Errorf("flat with ID %s: %w", id, dbt.ErrNotFound)
	}
	return copyFlat(flat), nil
}

// GetFlatByCode retrieves a flat by its join code.
func (db *inMemoryLedgerDBWrapper) GetFlatByCode(code string) (*dbt.Flat, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, exists := db.flatCodes[code]
	if !exists {
		return nil, fmt.Errorf("flat with join code %s: %w", code, dbt.ErrNotFound)
	}
	return copyFlat(db.flats[id]), nil
}

// UpdateFlat replaces the flat's settings. The join code index follows a
// code change.
func (db *inMemoryLedgerDBWrapper) UpdateFlat(flat *dbt.Flat) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	current, exists := db.flats[flat.ID]
	if !exists {
		return fmt.Errorf("flat with ID %s not found for update: %w", flat.ID, dbt.ErrNotFound)
	}
	if flat.JoinCode != current.JoinCode {
		if _, taken := db.flatCodes[flat.JoinCode]; taken {
			return fmt.Errorf("join code %s already exists", flat.JoinCode)
		}
		delete(db.flatCodes, current.JoinCode)
		db.flatCodes[flat.JoinCode] = flat.ID
	}
	db.flats[flat.ID] = copyFlat(flat)
	return nil
}

// FlatMemberAdd adds a member to the flat. Adding an existing member is a
// no-op.
func (db *inMemoryLedgerDBWrapper) FlatMemberAdd(id uuid.UUID, member uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	flat, exists := db.flats[id]
	if !exists {
		return fmt.Errorf("flat with ID %s: %w", id, dbt.ErrNotFound)
	}
	if flat.HasMember(member) {
		return nil
	}
	flat.Members = append(flat.Members, member)
	return nil
}

// FlatMemberRemove removes a member from the flat. Removing an absent member
// is a no-op; removing the last member is rejected.
func (db *inMemoryLedgerDBWrapper) FlatMemberRemove(id uuid.UUID, member uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	flat, exists := db.flats[id]
	if !exists {
		return fmt.Errorf("flat with ID %s: %w", id, dbt.ErrNotFound)
	}

	foundIdx := -1
	for i, m := range flat.Members {
		if m == member {
			foundIdx = i
			break
		}
	}
	if foundIdx == -1 {
		return nil
	}
	if len(flat.Members) == 1 {
		return fmt.Errorf("cannot remove the last member of flat %s", id)
	}
	flat.Members = append(flat.Members[:foundIdx], flat.Members[foundIdx+1:]...)
	return nil
}

// DeleteFlat deletes a flat and its join code.
func (db *inMemoryLedgerDBWrapper) DeleteFlat(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	flat, exists := db.flats[id]
	if !exists {
		return fmt.Errorf("flat with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	delete(db.flatCodes, flat.JoinCode)
	delete(db.flats, id)
	return nil
}

// CreateUser creates a new user. Emails are unique.
func (db *inMemoryLedgerDBWrapper) CreateUser(user *dbt.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.users[user.ID]; exists {
		return fmt.Errorf("user with ID %s already exists", user.ID)
	}
	if _, exists := db.emails[user.Email]; exists {
		return fmt.Errorf("user with email %s already exists", user.Email)
	}

	userCopy := *user
	db.users[user.ID] = &userCopy
	db.emails[user.Email] = user.ID
	return nil
}

// GetUser retrieves a user by id.
func (db *inMemoryLedgerDBWrapper) GetUser(id uuid.UUID) (*dbt.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	user, exists := db.users[id]
	if !exists {
		return nil, fmt.Errorf("user with ID %s: %w", id, dbt.ErrNotFound)
	}
	userCopy := *user
	return &userCopy, nil
}

// GetUserByEmail retrieves a user by email.
func (db *inMemoryLedgerDBWrapper) GetUserByEmail(email string) (*dbt.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, exists := db.emails[email]
	if !exists {
		return nil, fmt.Errorf("user with email %s: %w", email, dbt.ErrNotFound)
	}
	userCopy := *db.users[id]
	return &userCopy, nil
}

// UpdateUser replaces a user's profile. The email index follows an email
// change.
func (db *inMemoryLedgerDBWrapper) UpdateUser(user *dbt.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	current, exists := db.users[user.ID]
	if !exists {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, dbt.ErrNotFound)
	}
	if user.Email != current.Email {
		if _, taken := db.emails[user.Email]; taken {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
		delete(db.emails, current.Email)
		db.emails[user.Email] = user.ID
	}
	userCopy := *user
	db.users[user.ID] = &userCopy
	return nil
}

// DeleteUser deletes a user and their email index entry.
func (db *inMemoryLedgerDBWrapper) DeleteUser(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	user, exists := db.users[id]
	if !exists {
		return fmt.Errorf("user with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	delete(db.emails, user.Email)
	delete(db.users, id)
	return nil
}

// PutReminder inserts or replaces a reminder by id.
func (db *inMemoryLedgerDBWrapper) PutReminder(reminder *dbt.Reminder) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	reminderCopy := *reminder
	db.reminders[reminder.ID] = &reminderCopy
	return nil
}

// GetReminder retrieves a reminder by id.
func (db *inMemoryLedgerDBWrapper) GetReminder(id uuid.UUID) (*dbt.Reminder, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	reminder, exists := db.reminders[id]
	if !exists {
		return nil, fmt.Errorf("reminder with ID %s: %w", id, dbt.ErrNotFound)
	}
	reminderCopy := *reminder
	return &reminderCopy, nil
}

// UpdateReminderStatus moves a reminder through its state machine. Paid is
// terminal.
func (db *inMemoryLedgerDBWrapper) UpdateReminderStatus(id uuid.UUID, status dbt.ReminderStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	reminder, exists := db.reminders[id]
	if !exists {
		return fmt.Errorf("reminder with ID %s not found for update: %w", id, dbt.ErrNotFound)
	}
	if reminder.Status == dbt.StatusPaid && status != dbt.StatusPaid {
		return fmt.Errorf("reminder with ID %s is already paid", id)
	}
	reminder.Status = status
	return nil
}

// DeleteReminder removes a reminder by id.
func (db *inMemoryLedgerDBWrapper) DeleteReminder(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.reminders[id]; !exists {
		return fmt.Errorf("reminder with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	delete(db.reminders, id)
	return nil
}

func matchReminder(r *dbt.Reminder, filter dbt.ReminderFilter) bool {
	if filter.UserID != uuid.Nil && r.UserID != filter.UserID {
		return false
	}
	if filter.FlatID != uuid.Nil && r.FlatID != filter.FlatID {
		return false
	}
	if filter.Status != nil && r.Status != *filter.Status {
		return false
	}
	if filter.DueBefore != nil && !r.DueDate.Before(*filter.DueBefore) {
		return false
	}
	return true
}

// QueryReminders returns the reminders matching the filter, ordered by due
// date ascending.
func (db *inMemoryLedgerDBWrapper) QueryReminders(ctx context.Context, filter dbt.ReminderFilter) ([]dbt.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]dbt.Reminder, 0)
	for _, reminder := range db.reminders {
		if matchReminder(reminder, filter) {
			result = append(result, *reminder)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// PutBudget inserts or replaces a budget by id.
func (db *inMemoryLedgerDBWrapper) PutBudget(budget *dbt.Budget) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.budgets[budget.ID] = copyBudget(budget)
	return nil
}

// GetBudget retrieves a budget by id.
func (db *inMemoryLedgerDBWrapper) GetBudget(id uuid.UUID) (*dbt.Budget, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	budget, exists := db.budgets[id]
	if !exists {
		return nil, fmt.Errorf("budget with ID %s: %w", id, dbt.ErrNotFound)
	}
	return copyBudget(budget), nil
}

// DeleteBudget removes a budget by id.
func (db *inMemoryLedgerDBWrapper) DeleteBudget(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.budgets[id]; !exists {
		return fmt.Errorf("budget with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	delete(db.budgets, id)
	return nil
}

// ListBudgets returns the user's budgets active at instant at, ordered by
// start date.
func (db *inMemoryLedgerDBWrapper) ListBudgets(userID uuid.UUID, at time.Time) ([]dbt.Budget, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]dbt.Budget, 0)
	for _, budget := range db.budgets {
		if budget.UserID == userID && budget.ActiveAt(at) {
			result = append(result, *copyBudget(budget))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}
