package gcppubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"flatfin/mq/mq"
)

const (
	// Attribute carrying the routing topic: a flat ID for expense and member
	// streams, a user ID for the reminder due stream.
	topicIDAttribute = "topicId"
)

// subscriptionInfo holds details about an active Pub/Sub subscription.
type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// GenericPubSubService provides a generic implementation for GCP Pub/Sub operations.
type GenericPubSubService[M any] struct {
	client              *pubsub.Client
	topic               *pubsub.Topic
	activeSubscriptions map[uuid.UUID]*subscriptionInfo
	subscriptionsMutex  sync.Mutex
	ctx                 context.Context
}

// NewGenericPubSubService creates and initializes a generic service for a specific message type.
// It ensures the underlying Pub/Sub topic exists, creating it if necessary.
func NewGenericPubSubService[M any](ctx context.Context, client *pubsub.Client, topicID string) (*GenericPubSubService[M], error) {
	if client == nil {
		return nil, fmt.Errorf("GCP Pub/Sub client is nil")
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		log.Printf("Created Pub/Sub topic: %s", topicID)
	}

	return &GenericPubSubService[M]{
		client:              client,
		topic:               topic,
		activeSubscriptions: make(map[uuid.UUID]*subscriptionInfo),
		ctx:                 ctx,
	}, nil
}

// Publish sends a message to the configured Pub/Sub topic with its routing
// topic as an attribute.
func (s *GenericPubSubService[M]) Publish(msg mq.TopicProvider) error {
	typeName := reflect.TypeOf(msg).Name()
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", typeName, err)
	}

	routingKey := msg.GetTopic().String()
	pubsubMsg := &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			topicIDAttribute: routingKey,
		},
	}

	// Publish is non-blocking. The client library handles batching and sending.
	result := s.topic.Publish(s.ctx, pubsubMsg)
	_, err = result.Get(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to publish %s to topic %s: %w", typeName, s.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a new filtered subscription on GCP and starts listening for messages.
func (s *GenericPubSubService[M]) Subscribe(topicId uuid.UUID) (uuid.UUID, <-chan M, error) {
	subscriptionID := uuid.New() // Internal ID for tracking
	typeName := reflect.TypeOf(*new(M)).Name()

	// Create a unique, descriptive subscription name for GCP.
	gcpSubName := fmt.Sprintf("sub-%s-%s-%s", typeName, topicId.String(), subscriptionID.String())

	config := pubsub.SubscriptionConfig{
		Topic:            s.topic,
		Filter:           fmt.Sprintf("attributes.%s = \"%s\"", topicIDAttribute, topicId.String()),
		ExpirationPolicy: 24 * time.Hour, // Set a reasonable expiration policy
		AckDeadline:      10 * time.Second,
	}

	gcpSub, err := s.client.CreateSubscription(s.ctx, gcpSubName, config)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create GCP subscription %s for %s: %w", gcpSubName, typeName, err)
	}

	msgChan := make(chan M, 5)
	// Create a cancellable context for the receiver goroutine.
	receiveCtx, cancel := context.WithCancel(s.ctx)

	s.subscriptionsMutex.Lock()
	s.activeSubscriptions[subscriptionID] = &subscriptionInfo{
		gcpSubscription: gcpSub,
		cancel:          cancel,
	}
	s.subscriptionsMutex.Unlock()

	go func() {
		// Automatically clean up when the goroutine exits.
		defer func() {
			s.subscriptionsMutex.Lock()
			delete(s.activeSubscriptions, subscriptionID)
			s.subscriptionsMutex.Unlock()

			// Delete the subscription from GCP to prevent resource leaks.
			if deleteErr := gcpSub.Delete(context.Background()); deleteErr != nil {
				log.Printf("Error deleting GCP subscription %s: %v", gcpSub.ID(), deleteErr)
			}
			close(msgChan)
		}()

		// Receive blocks until the context is cancelled.
		err := gcpSub.Receive(receiveCtx, func(ctx context.Context, pubsubMsg *pubsub.Message) {
			pubsubMsg.Ack()

			var msg M
			if err := json.Unmarshal(pubsubMsg.Data, &msg); err != nil {
				log.Printf("Error unmarshaling %s for %s: %v. Body: %s", typeName, subscriptionID, err, string(pubsubMsg.Data))
				return
			}

			select {
			case msgChan <- msg:
			case <-time.After(2 * time.Second):
				log.Printf("Timeout sending %s to msgChan for %s.", typeName, subscriptionID)
			case <-receiveCtx.Done(): // Check if we were cancelled while trying to send.
				return
			}
		})

		if err != nil && err != context.Canceled {
			log.Printf("Error in Receive loop for %s subscription %s: %v", typeName, subscriptionID, err)
		}
	}()

	return subscriptionID, msgChan, nil
}

// DeSubscribe stops the message receiver and deletes the subscription from GCP.
func (s *GenericPubSubService[M]) DeSubscribe(id uuid.UUID) error {
	s.subscriptionsMutex.Lock()
	info, ok := s.activeSubscriptions[id]
	if ok {
		// It's removed from the map inside the goroutine's defer block.
		// Here we just trigger the cancellation.
		info.cancel()
	}
	s.subscriptionsMutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription ID %s not found for %s service", id, reflect.TypeOf(*new(M)).Name())
	}

	return nil
}

// Close gracefully shuts down all active subscriptions for this service.
func (s *GenericPubSubService[M]) Close() {
	s.subscriptionsMutex.Lock()
	defer s.subscriptionsMutex.Unlock()

	for _, info := range s.activeSubscriptions {
		info.cancel()
	}
}

// --- expenseMQ implementation ---
type expenseMQ struct {
	genericService *GenericPubSubService[mq.ExpenseMessage]
	action         mq.Action
}

func NewExpenseMessageQueue(ctx context.Context, client *pubsub.Client, action mq.Action) (*expenseMQ, error) {
	topicID := fmt.Sprintf("expense-%s", action.String())
	gs, err := NewGenericPubSubService[mq.ExpenseMessage](ctx, client, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for Expense: %w", err)
	}
	return &expenseMQ{genericService: gs, action: action}, nil
}
func (q *expenseMQ) GetAction() mq.Action                { return q.action }
func (q *expenseMQ) Publish(msg mq.ExpenseMessage) error { return q.genericService.Publish(msg) }
func (q *expenseMQ) Subscribe(flatId uuid.UUID) (uuid.UUID, <-chan mq.ExpenseMessage, error) {
	return q.genericService.Subscribe(flatId)
}
func (q *expenseMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --- memberMQ implementation ---
type memberMQ struct {
	genericService *GenericPubSubService[mq.MemberMessage]
	action         mq.Action
}

func NewMemberMessageQueue(ctx context.Context, client *pubsub.Client, action mq.Action) (*memberMQ, error) {
	topicID := fmt.Sprintf("member-%s", action.String())
	gs, err := NewGenericPubSubService[mq.MemberMessage](ctx, client, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for Member: %w", err)
	}
	return &memberMQ{genericService: gs, action: action}, nil
}
func (q *memberMQ) GetAction() mq.Action               { return q.action }
func (q *memberMQ) Publish(msg mq.MemberMessage) error { return q.genericService.Publish(msg) }
func (q *memberMQ) Subscribe(flatId uuid.UUID) (uuid.UUID, <-chan mq.MemberMessage, error) {
	return q.genericService.Subscribe(flatId)
}
func (q *memberMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --- reminderDueMQ implementation ---
type reminderDueMQ struct {
	genericService *GenericPubSubService[mq.ReminderDueMessage]
}

func NewReminderDueMessageQueue(ctx context.Context, client *pubsub.Client) (*reminderDueMQ, error) {
	gs, err := NewGenericPubSubService[mq.ReminderDueMessage](ctx, client, "reminder-due")
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for ReminderDue: %w", err)
	}
	return &reminderDueMQ{genericService: gs}, nil
}
func (q *reminderDueMQ) Publish(msg mq.ReminderDueMessage) error {
	return q.genericService.Publish(msg)
}
func (q *reminderDueMQ) Subscribe(userId uuid.UUID) (uuid.UUID, <-chan mq.ReminderDueMessage, error) {
	return q.genericService.Subscribe(userId)
}
func (q *reminderDueMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --------- ledger message queue wrapper implementation ---------

type GCPLedgerMessageQueueWrapper struct {
	ExpenseMQArray [mq.ActionCnt]*expenseMQ
	MemberMQArray  [mq.ActionCnt]*memberMQ
	ReminderDueMQ  *reminderDueMQ
}

func (wrapper *GCPLedgerMessageQueueWrapper) GetExpenseMessageQueue(action mq.Action) mq.ExpenseMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.ExpenseMQArray[action] == nil {
		return nil
	}
	return wrapper.ExpenseMQArray[action]
}

func (wrapper *GCPLedgerMessageQueueWrapper) GetMemberMessageQueue(action mq.Action) mq.MemberMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.MemberMQArray[action] == nil {
		return nil
	}
	return wrapper.MemberMQArray[action]
}

func (wrapper *GCPLedgerMessageQueueWrapper) GetReminderDueMessageQueue() mq.ReminderDueMessageQueue {
	return wrapper.ReminderDueMQ
}

// NewGCPLedgerMessageQueueWrapper creates a new MQ wrapper instance using GCP Pub/Sub.
func NewGCPLedgerMessageQueueWrapper(ctx context.Context, projectID string) (mq.LedgerMessageQueueWrapper, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Pub/Sub client for project %s: %w", projectID, err)
	}

	wrapper := &GCPLedgerMessageQueueWrapper{}

	// Expense: Create, Update, Delete
	wrapper.ExpenseMQArray[mq.ActionCreate], err = NewExpenseMessageQueue(ctx, client, mq.ActionCreate)
	if err != nil {
		return nil, err
	}
	wrapper.ExpenseMQArray[mq.ActionUpdate], err = NewExpenseMessageQueue(ctx, client, mq.ActionUpdate)
	if err != nil {
		return nil, err
	}
	wrapper.ExpenseMQArray[mq.ActionDelete], err = NewExpenseMessageQueue(ctx, client, mq.ActionDelete)
	if err != nil {
		return nil, err
	}

	// Member: Create, Delete
	wrapper.MemberMQArray[mq.ActionCreate], err = NewMemberMessageQueue(ctx, client, mq.ActionCreate)
	if err != nil {
		return nil, err
	}
	wrapper.MemberMQArray[mq.ActionUpdate] = nil // Not implemented for Member
	wrapper.MemberMQArray[mq.ActionDelete], err = NewMemberMessageQueue(ctx, client, mq.ActionDelete)
	if err != nil {
		return nil, err
	}

	wrapper.ReminderDueMQ, err = NewReminderDueMessageQueue(ctx, client)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
