package mq

import (
	"time"

	"github.com/google/uuid"

	"flatfin/ledger"
)

type Action int

const (
	ActionCreate Action = iota
	ActionUpdate
	ActionDelete
	ActionCnt
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// FieldChange is one entry of the change set attached to update events.
type FieldChange struct {
	Field string
	From  string
	To    string
}

// ExpenseMessage is published on every expense mutation. Changes is only
// populated for updates.
type ExpenseMessage struct {
	ID       uuid.UUID
	Name     string
	Amount   ledger.Money
	Category ledger.Category
	PaidBy   uuid.UUID
	FlatID   uuid.UUID
	Changes  []FieldChange
}

func (m ExpenseMessage) GetTopic() uuid.UUID {
	return m.FlatID
}

// MemberMessage is published when a flat's member set changes.
type MemberMessage struct {
	FlatID   uuid.UUID
	MemberID uuid.UUID
}

func (m MemberMessage) GetTopic() uuid.UUID {
	return m.FlatID
}

// ReminderDueMessage is published by the reminder scanner when a pending
// reminder enters its due window. The topic is the owning user.
type ReminderDueMessage struct {
	ID      uuid.UUID
	Title   string
	Type    string
	Amount  ledger.Money
	DueDate time.Time
	UserID  uuid.UUID
	FlatID  uuid.UUID
}

func (m ReminderDueMessage) GetTopic() uuid.UUID {
	return m.UserID
}
