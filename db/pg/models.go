package pg

import (
	"time"

	"github.com/google/uuid"
)

// Amounts are stored as bigint minor units; the mapping layer converts to and
// from ledger.Money.

type ExpenseModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	AmountCents int64     `gorm:"not null"`
	Category    int       `gorm:"not null"`
	Kind        int       `gorm:"not null"`
	Date        time.Time `gorm:"not null"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	FlatID      uuid.UUID `gorm:"type:uuid"`
	SplitMethod int       `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ExpenseModel.
func (ExpenseModel) TableName() string {
	return "expenses"
}

type ExpenseSplitModel struct {
	ExpenseID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	AmountCents int64     `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ExpenseSplitModel.
func (ExpenseSplitModel) TableName() string {
	return "expense_splits"
}

type FlatModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string    `gorm:"size:255;not null"`
	JoinCode            string    `gorm:"size:6;uniqueIndex;not null"`
	CreatedBy           uuid.UUID `gorm:"type:uuid;not null"`
	RentCents           int64
	RentDueDay          int
	ElectricityCapCents int64
	InternetBillCents   int64
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for FlatModel.
func (FlatModel) TableName() string {
	return "flats"
}

type FlatMemberModel struct {
	FlatID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for FlatMemberModel.
func (FlatMemberModel) TableName() string {
	return "flat_members"
}

type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	AvatarURL string    `gorm:"size:512"`
	BankInfo  string    `gorm:"size:255"`
	FlatID    uuid.UUID `gorm:"type:uuid"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

type ReminderModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"size:1024"`
	Type        int       `gorm:"not null"`
	AmountCents int64     `gorm:"not null"`
	DueDate     time.Time `gorm:"not null"`
	Status      int       `gorm:"not null"`
	UserID      uuid.UUID `gorm:"type:uuid;not null"`
	FlatID      uuid.UUID `gorm:"type:uuid"`
	RecurDays   int
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ReminderModel.
func (ReminderModel) TableName() string {
	return "reminders"
}

type BudgetModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`
	Category   *int
	LimitCents int64     `gorm:"not null"`
	Period     int       `gorm:"not null"`
	StartDate  time.Time `gorm:"not null"`
	EndDate    *time.Time
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for BudgetModel.
func (BudgetModel) TableName() string {
	return "budgets"
}
