package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"flatfin/mq/mq"
)

const (
	exchangeName = "ledger_events_exchange" // All ledger events go through this exchange
)

// Routing keys are "<stream>.<action>.<topic>", so a subscription for one
// flat (or one user, for reminders) binds "<stream>.<action>.<topic-uuid>".
func routingKey(stream string, action mq.Action, topic uuid.UUID) string {
	return fmt.Sprintf("%s.%s.%s", stream, action, topic)
}

func bindingPattern(stream string, action mq.Action, topic uuid.UUID) string {
	return routingKey(stream, action, topic)
}

// rabbitQueue implements the queue interfaces for RabbitMQ. Each Subscribe
// declares its own auto-delete queue bound to the topic exchange, so
// subscribers only see events for their flat.
type rabbitQueue[M mq.TopicProvider] struct {
	stream  string
	action  mq.Action
	conn    *amqp091.Connection
	channel *amqp091.Channel

	mu        sync.Mutex // Protects the consumers map
	consumers map[uuid.UUID]context.CancelFunc
}

// newRabbitQueue opens a channel on conn and declares the shared exchange.
func newRabbitQueue[M mq.TopicProvider](stream string, action mq.Action, conn *amqp091.Connection) (*rabbitQueue[M], error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := DeclareTopicExchange(ch, exchangeName); err != nil {
		ch.Close()
		return nil, err
	}

	return &rabbitQueue[M]{
		stream:    stream,
		action:    action,
		conn:      conn,
		channel:   ch,
		consumers: make(map[uuid.UUID]context.CancelFunc),
	}, nil
}

// GetAction returns the action associated with this queue.
func (q *rabbitQueue[M]) GetAction() mq.Action {
	return q.action
}

// Publish sends a message to the exchange routed by its topic.
func (q *rabbitQueue[M]) Publish(msg M) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx,
		exchangeName, // exchange
		routingKey(q.stream, q.action, msg.GetTopic()), // routing key
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Subscribe declares a private queue bound to the topic and starts consuming.
func (q *rabbitQueue[M]) Subscribe(topicID uuid.UUID) (uuid.UUID, <-chan M, error) {
	subscriberID := uuid.New()
	queueName := fmt.Sprintf("%s_%s_%s", q.stream, q.action, subscriberID)

	ch, err := q.conn.Channel()
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	queue, err := ch.QueueDeclare(
		queueName, // name
		false,     // durable
		true,      // auto-delete
		true,      // exclusive
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	err = ch.QueueBind(queue.Name, bindingPattern(q.stream, q.action, topicID), exchangeName, false, nil)
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to bind queue %s: %w", queueName, err)
	}

	msgs, err := ch.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	outputChan := make(chan M)
	consumeCtx, cancel := context.WithCancel(context.Background())

	q.mu.Lock()
	q.consumers[subscriberID] = cancel
	q.mu.Unlock()

	go func() {
		defer func() {
			q.mu.Lock()
			delete(q.consumers, subscriberID)
			q.mu.Unlock()
			ch.Close()
			close(outputChan)
		}()

		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}
				var msg M
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					log.Printf("Failed to unmarshal %s message: %v", q.stream, err)
					continue
				}
				select {
				case outputChan <- msg:
				case <-time.After(1 * time.Second): // Prevent blocking indefinitely
					log.Printf("Timeout sending message to %s consumer %s. Skipping.", q.stream, subscriberID)
				case <-consumeCtx.Done():
					return
				}
			case <-consumeCtx.Done():
				return
			}
		}
	}()

	return subscriberID, outputChan, nil
}

// DeSubscribe stops a consumer by its id.
func (q *rabbitQueue[M]) DeSubscribe(subscriberID uuid.UUID) error {
	q.mu.Lock()
	cancel, ok := q.consumers[subscriberID]
	q.mu.Unlock()

	if !ok {
		return fmt.Errorf("consumer with ID %s not found for %s %s queue", subscriberID, q.stream, q.action)
	}
	cancel()
	return nil
}

// rabbitLedgerMessageQueueWrapper implements mq.LedgerMessageQueueWrapper for
// RabbitMQ.
type rabbitLedgerMessageQueueWrapper struct {
	ExpenseMQArray [mq.ActionCnt]mq.ExpenseMessageQueue
	MemberMQArray  [mq.ActionCnt]mq.MemberMessageQueue
	ReminderDueMQ  mq.ReminderDueMessageQueue
	conn           *amqp091.Connection // Keep a reference to the connection to close it later
}

// NewRabbitLedgerMessageQueueWrapper creates a new instance of
// rabbitLedgerMessageQueueWrapper.
func NewRabbitLedgerMessageQueueWrapper(conn *amqp091.Connection) (mq.LedgerMessageQueueWrapper, error) {
	wrapper := &rabbitLedgerMessageQueueWrapper{
		conn: conn,
	}

	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionUpdate, mq.ActionDelete} {
		q, err := newRabbitQueue[mq.ExpenseMessage]("expense", action, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to create expense %s mq: %w", action, err)
		}
		wrapper.ExpenseMQArray[action] = q
	}

	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionDelete} {
		q, err := newRabbitQueue[mq.MemberMessage]("member", action, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to create member %s mq: %w", action, err)
		}
		wrapper.MemberMQArray[action] = q
	}

	reminderQ, err := newRabbitQueue[mq.ReminderDueMessage]("reminder_due", mq.ActionCreate, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder due mq: %w", err)
	}
	wrapper.ReminderDueMQ = &rabbitReminderDueQueue{reminderQ}

	return wrapper, nil
}

func (wrapper *rabbitLedgerMessageQueueWrapper) GetExpenseMessageQueue(action mq.Action) mq.ExpenseMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.ExpenseMQArray[action]
}

func (wrapper *rabbitLedgerMessageQueueWrapper) GetMemberMessageQueue(action mq.Action) mq.MemberMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.MemberMQArray[action]
}

func (wrapper *rabbitLedgerMessageQueueWrapper) GetReminderDueMessageQueue() mq.ReminderDueMessageQueue {
	return wrapper.ReminderDueMQ
}

// Close cancels all consumers, closes the channels and the connection.
func (wrapper *rabbitLedgerMessageQueueWrapper) Close() {
	for _, q := range wrapper.ExpenseMQArray {
		if rq, ok := q.(*rabbitQueue[mq.ExpenseMessage]); ok && rq.channel != nil {
			rq.channel.Close()
		}
	}
	for _, q := range wrapper.MemberMQArray {
		if rq, ok := q.(*rabbitQueue[mq.MemberMessage]); ok && rq.channel != nil {
			rq.channel.Close()
		}
	}
	if rq, ok := wrapper.ReminderDueMQ.(*rabbitReminderDueQueue); ok && rq.channel != nil {
		rq.channel.Close()
	}
	if wrapper.conn != nil {
		wrapper.conn.Close()
	}
}

// rabbitReminderDueQueue hides the action accessor the due queue does not
// need.
type rabbitReminderDueQueue struct {
	*rabbitQueue[mq.ReminderDueMessage]
}
