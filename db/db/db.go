package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerDBWrapper is the single store boundary of the service. Both the
// in-memory and the PostgreSQL stores implement it.
//
// Reads of missing ids return ErrNotFound, deletes of missing ids likewise.
// Put operations insert or replace by id and are idempotent for identical
// content. Transient backend failures are wrapped in ErrStoreUnavailable.
type LedgerDBWrapper interface {
	// Expense
	PutExpense(expense *Expense) error
	GetExpense(id uuid.UUID) (*Expense, error)
	DeleteExpense(id uuid.UUID) error
	QueryExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	// Flat
	CreateFlat(flat *Flat) error
	GetFlat(id uuid.UUID) (*Flat, error)
	GetFlatByCode(code string) (*Flat, error)
	UpdateFlat(flat *Flat) error
	FlatMemberAdd(id uuid.UUID, member uuid.UUID) error
	FlatMemberRemove(id uuid.UUID, member uuid.UUID) error
	DeleteFlat(id uuid.UUID) error
	// User
	CreateUser(user *User) error
	GetUser(id uuid.UUID) (*User, error)
	GetUserByEmail(email string) (*User, error)
	UpdateUser(user *User) error
	DeleteUser(id uuid.UUID) error
	// Reminder
	PutReminder(reminder *Reminder) error
	GetReminder(id uuid.UUID) (*Reminder, error)
	UpdateReminderStatus(id uuid.UUID, status ReminderStatus) error
	DeleteReminder(id uuid.UUID) error
	QueryReminders(ctx context.Context, filter ReminderFilter) ([]Reminder, error)
	// Budget
	PutBudget(budget *Budget) error
	GetBudget(id uuid.UUID) (*Budget, error)
	DeleteBudget(id uuid.UUID) error
	ListBudgets(userID uuid.UUID, at time.Time) ([]Budget, error)
}
