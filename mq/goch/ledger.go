package goch

import (
	"sync"

	"github.com/google/uuid"

	"flatfin/mq/mq"
)

// ChannelMessageQueue is an in-process implementation of the queue interfaces
// backed by Go channels. Each subscriber gets its own buffered channel and
// only receives messages whose topic matches its subscription.
type ChannelMessageQueue[M mq.TopicProvider] struct {
	action mq.Action

	mu          sync.RWMutex
	subscribers map[uuid.UUID]*subscriber[M]
}

type subscriber[M any] struct {
	topic   uuid.UUID
	channel chan M
}

// subscriberBuffer bounds how far a slow subscriber may lag before messages
// are dropped for it.
const subscriberBuffer = 16

// NewChannelMessageQueue creates a new in-process queue for one action.
func NewChannelMessageQueue[M mq.TopicProvider](action mq.Action) *ChannelMessageQueue[M] {
	return &ChannelMessageQueue[M]{
		action:      action,
		subscribers: make(map[uuid.UUID]*subscriber[M]),
	}
}

// GetAction returns the action associated with this queue.
func (q *ChannelMessageQueue[M]) GetAction() mq.Action {
	return q.action
}

// Publish delivers msg to every subscriber of its topic. A subscriber whose
// buffer is full misses the message; ErrQueueFull reports that at least one
// did.
func (q *ChannelMessageQueue[M]) Publish(msg M) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var dropped bool
	for _, sub := range q.subscribers {
		if sub.topic != msg.GetTopic() {
			continue
		}
		select {
		case sub.channel <- msg:
		default:
			dropped = true
		}
	}
	if dropped {
		return ErrQueueFull
	}
	return nil
}

// Subscribe registers a new subscriber for the topic and returns its id and
// receive channel.
func (q *ChannelMessageQueue[M]) Subscribe(topicID uuid.UUID) (uuid.UUID, <-chan M, error) {
	subscriberID := uuid.New()
	sub := &subscriber[M]{
		topic:   topicID,
		channel: make(chan M, subscriberBuffer),
	}

	q.mu.Lock()
	q.subscribers[subscriberID] = sub
	q.mu.Unlock()

	return subscriberID, sub.channel, nil
}

// DeSubscribe removes a subscriber by its id and closes its channel.
func (q *ChannelMessageQueue[M]) DeSubscribe(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, ok := q.subscribers[id]
	if !ok {
		return ErrSubscriberNotFound
	}
	delete(q.subscribers, id)
	close(sub.channel)
	return nil
}

// GoChanLedgerMessageQueueWrapper implements mq.LedgerMessageQueueWrapper
// with in-process channels.
type GoChanLedgerMessageQueueWrapper struct {
	ExpenseMQArray [mq.ActionCnt]mq.ExpenseMessageQueue
	MemberMQArray  [mq.ActionCnt]mq.MemberMessageQueue
	ReminderDueMQ  mq.ReminderDueMessageQueue
}

// NewGoChanLedgerMessageQueueWrapper creates a new instance of
// GoChanLedgerMessageQueueWrapper.
func NewGoChanLedgerMessageQueueWrapper() mq.LedgerMessageQueueWrapper {
	wrapper := GoChanLedgerMessageQueueWrapper{}
	// expenses carry create, update and delete
	wrapper.ExpenseMQArray[mq.ActionCreate] = NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionCreate)
	wrapper.ExpenseMQArray[mq.ActionUpdate] = NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionUpdate)
	wrapper.ExpenseMQArray[mq.ActionDelete] = NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionDelete)
	// membership carries join and leave
	wrapper.MemberMQArray[mq.ActionCreate] = NewChannelMessageQueue[mq.MemberMessage](mq.ActionCreate)
	wrapper.MemberMQArray[mq.ActionDelete] = NewChannelMessageQueue[mq.MemberMessage](mq.ActionDelete)
	// one due queue, no per-action split
	wrapper.ReminderDueMQ = &reminderDueQueue{NewChannelMessageQueue[mq.ReminderDueMessage](mq.ActionCreate)}

	return &wrapper
}

func (wrapper *GoChanLedgerMessageQueueWrapper) GetExpenseMessageQueue(action mq.Action) mq.ExpenseMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.ExpenseMQArray[action]
}

func (wrapper *GoChanLedgerMessageQueueWrapper) GetMemberMessageQueue(action mq.Action) mq.MemberMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.MemberMQArray[action]
}

func (wrapper *GoChanLedgerMessageQueueWrapper) GetReminderDueMessageQueue() mq.ReminderDueMessageQueue {
	return wrapper.ReminderDueMQ
}

// reminderDueQueue hides the action accessor the due queue does not need.
type reminderDueQueue struct {
	*ChannelMessageQueue[mq.ReminderDueMessage]
}

// --- Error Definitions ---
type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const (
	ErrQueueFull          QueueError = "message queue is full"
	ErrSubscriberNotFound QueueError = "subscriber not found"
)
