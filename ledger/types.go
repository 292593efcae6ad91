package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of expense categories. Reports, budgets and
// reminders all key off this enumeration.
type Category int

const (
	CategoryRent Category = iota
	CategoryElectricity
	CategoryInternet
	CategoryGroceries
	CategoryMaintenance
	CategoryFood
	CategoryTravel
	CategoryEntertainment
	CategoryEducation
	CategoryShopping
	CategoryHealth
	CategoryOther
	CategoryCnt
)

var categoryNames = [CategoryCnt]string{
	"rent", "electricity", "internet", "groceries", "maintenance", "food",
	"travel", "entertainment", "education", "shopping", "health", "other",
}

func (c Category) String() string {
	if c < 0 || c >= CategoryCnt {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory maps a category name to its Category. Unknown names map to
// CategoryOther with ok == false.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return CategoryOther, false
}

// Entry is the projection of an expense the aggregation core works on.
// Callers build entries from store snapshots; the core never reads the store.
type Entry struct {
	ID       uuid.UUID
	Name     string
	Amount   Money
	Category Category
	Date     time.Time
}

// SharedExpense is the projection of a shared expense used by the balance
// aggregator: who paid, and who owes which share.
type SharedExpense struct {
	PaidBy uuid.UUID
	Splits map[uuid.UUID]Money
}

// MemberBalance is one counterparty's netted position against the acting
// member. Positive means the counterparty owes the acting member.
type MemberBalance struct {
	Member uuid.UUID
	Amount Money
}
