package db

import (
	"time"

	"github.com/google/uuid"

	"flatfin/ledger"
)

// ExpenseKind separates purely personal expenses from ones shared with a flat.
type ExpenseKind int

const (
	KindPersonal ExpenseKind = iota
	KindShared
	KindCnt
)

var kindNames = [KindCnt]string{"personal", "shared"}

func (k ExpenseKind) String() string {
	if k < 0 || k >= KindCnt {
		return "unknown"
	}
	return kindNames[k]
}

func ParseExpenseKind(s string) (ExpenseKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return ExpenseKind(i), true
		}
	}
	return KindPersonal, false
}

// SplitMethod records how a shared expense's splits were produced.
type SplitMethod int

const (
	SplitEqual SplitMethod = iota
	SplitCustom
	SplitMethodCnt
)

var splitMethodNames = [SplitMethodCnt]string{"equal", "custom"}

func (m SplitMethod) String() string {
	if m < 0 || m >= SplitMethodCnt {
		return "unknown"
	}
	return splitMethodNames[m]
}

func ParseSplitMethod(s string) (SplitMethod, bool) {
	for i, name := range splitMethodNames {
		if name == s {
			return SplitMethod(i), true
		}
	}
	return SplitEqual, false
}

// Expense is one ledger entry. Personal expenses carry a zero FlatID and nil
// Splits; shared expenses carry both, and their splits sum exactly to Amount.
type Expense struct {
	ID          uuid.UUID
	Name        string
	Amount      ledger.Money
	Category    ledger.Category
	Kind        ExpenseKind
	Date        time.Time
	CreatedBy   uuid.UUID
	FlatID      uuid.UUID
	SplitMethod SplitMethod
	Splits      map[uuid.UUID]ledger.Money
}

// Shared reports whether the expense participates in flat balances.
func (e *Expense) Shared() bool {
	return e.Kind == KindShared
}

// FixedCosts are the flat's recurring bill settings, used to seed reminders.
type FixedCosts struct {
	Rent           ledger.Money
	RentDueDay     int
	ElectricityCap ledger.Money
	InternetBill   ledger.Money
}

// Flat is a shared household. Members always contains CreatedBy at creation
// time; the member set never becomes empty while the flat exists.
type Flat struct {
	ID         uuid.UUID
	Name       string
	JoinCode   string
	CreatedBy  uuid.UUID
	Members    []uuid.UUID
	FixedCosts FixedCosts
	CreatedAt  time.Time
}

// HasMember reports whether member belongs to the flat.
func (f *Flat) HasMember(member uuid.UUID) bool {
	for _, m := range f.Members {
		if m == member {
			return true
		}
	}
	return false
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL string
	BankInfo  string
	FlatID    uuid.UUID // zero when the user has not joined a flat
	CreatedAt time.Time
}

// ReminderType classifies recurring household bills.
type ReminderType int

const (
	ReminderRent ReminderType = iota
	ReminderElectricity
	ReminderInternet
	ReminderOther
	ReminderTypeCnt
)

var reminderTypeNames = [ReminderTypeCnt]string{"rent", "electricity", "internet", "other"}

func (t ReminderType) String() string {
	if t < 0 || t >= ReminderTypeCnt {
		return "unknown"
	}
	return reminderTypeNames[t]
}

func ParseReminderType(s string) (ReminderType, bool) {
	for i, name := range reminderTypeNames {
		if name == s {
			return ReminderType(i), true
		}
	}
	return ReminderOther, false
}

// ReminderStatus is the reminder state machine: pending may move to snoozed or
// paid; paid is terminal.
type ReminderStatus int

const (
	StatusPending ReminderStatus = iota
	StatusSnoozed
	StatusPaid
	ReminderStatusCnt
)

var reminderStatusNames = [ReminderStatusCnt]string{"pending", "snoozed", "paid"}

func (s ReminderStatus) String() string {
	if s < 0 || s >= ReminderStatusCnt {
		return "unknown"
	}
	return reminderStatusNames[s]
}

func ParseReminderStatus(s string) (ReminderStatus, bool) {
	for i, name := range reminderStatusNames {
		if name == s {
			return ReminderStatus(i), true
		}
	}
	return StatusPending, false
}

// Reminder is a dated bill notice. RecurDays > 0 makes it recurring: paying it
// re-arms a fresh pending reminder RecurDays after the due date.
type Reminder struct {
	ID          uuid.UUID
	Title       string
	Description string
	Type        ReminderType
	Amount      ledger.Money
	DueDate     time.Time
	Status      ReminderStatus
	UserID      uuid.UUID
	FlatID      uuid.UUID // zero for personal reminders
	RecurDays   int
}

// Budget caps spend for one user over a repeating period, optionally limited
// to a single category. EndDate nil means open-ended.
type Budget struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Category  *ledger.Category
	Limit     ledger.Money
	Period    ledger.BudgetPeriod
	StartDate time.Time
	EndDate   *time.Time
}

// ActiveAt reports whether the budget window covers instant t.
func (b *Budget) ActiveAt(t time.Time) bool {
	if t.Before(b.StartDate) {
		return false
	}
	return b.EndDate == nil || t.Before(*b.EndDate)
}

// ExpenseFilter selects expenses. Zero-value uuid fields match any owner or
// flat; nil pointer fields match any value; Start/End bound the date as a
// half-open range [Start, End).
type ExpenseFilter struct {
	CreatedBy uuid.UUID
	FlatID    uuid.UUID
	Category  *ledger.Category
	Kind      *ExpenseKind
	Start     *time.Time
	End       *time.Time
}

// ReminderFilter selects reminders by owner, status and due horizon.
type ReminderFilter struct {
	UserID    uuid.UUID
	FlatID    uuid.UUID
	Status    *ReminderStatus
	DueBefore *time.Time
}
