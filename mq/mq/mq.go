package mq

import "github.com/google/uuid"

// TopicProvider is implemented by every message type; the topic routes the
// message to per-flat (or per-user) subscribers.
type TopicProvider interface {
	GetTopic() uuid.UUID
}

type LedgerMessageQueueWrapper interface {
	GetExpenseMessageQueue(action Action) ExpenseMessageQueue
	GetMemberMessageQueue(action Action) MemberMessageQueue
	GetReminderDueMessageQueue() ReminderDueMessageQueue
}

type ExpenseMessageQueue interface {
	GetAction() Action
	Publish(msg ExpenseMessage) error
	Subscribe(flatID uuid.UUID) (uuid.UUID, <-chan ExpenseMessage, error)
	DeSubscribe(id uuid.UUID) error
}

type MemberMessageQueue interface {
	GetAction() Action
	Publish(msg MemberMessage) error
	Subscribe(flatID uuid.UUID) (uuid.UUID, <-chan MemberMessage, error)
	DeSubscribe(id uuid.UUID) error
}

type ReminderDueMessageQueue interface {
	Publish(msg ReminderDueMessage) error
	Subscribe(userID uuid.UUID) (uuid.UUID, <-chan ReminderDueMessage, error)
	DeSubscribe(id uuid.UUID) error
}
