package goch

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"flatfin/mq/mq"
)

// receiveMsgWithTimeout receives one message from ch or reports failure after
// timeout.
func receiveMsgWithTimeout[T any](tb testing.TB, ch <-chan T, timeout time.Duration) (T, bool) {
	tb.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			var zero T
			return zero, false
		}
		return msg, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

func isChanClosed[T any](ch <-chan T) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
		return false
	}
}

func TestChannelMessageQueueLifecycle(t *testing.T) {
	t.Parallel()
	q := NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionCreate)
	flatID := uuid.New()

	if q.GetAction() != mq.ActionCreate {
		t.Fatalf("Expected action %v, got %v", mq.ActionCreate, q.GetAction())
	}

	id, subChan, err := q.Subscribe(flatID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	msg := mq.ExpenseMessage{
		ID:     uuid.New(),
		Name:   "Electricity bill",
		Amount: 7500,
		FlatID: flatID,
	}
	if pubErr := q.Publish(msg); pubErr != nil {
		t.Errorf("Publish failed: %v", pubErr)
	}

	receivedMsg, ok := receiveMsgWithTimeout(t, subChan, 500*time.Millisecond)
	if !ok {
		t.Fatal("Failed to receive ExpenseMessage or channel closed/timed out")
	}
	if !reflect.DeepEqual(receivedMsg, msg) {
		t.Errorf("Expected message %+v, got %+v", msg, receivedMsg)
	}

	if err := q.DeSubscribe(id); err != nil {
		t.Fatalf("DeSubscribe failed: %v", err)
	}
	if !isChanClosed(subChan) {
		t.Error("Subscriber channel not closed after DeSubscribe")
	}
}

func TestChannelMessageQueueTopicFiltering(t *testing.T) {
	t.Parallel()
	q := NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionCreate)
	flatA := uuid.New()
	flatB := uuid.New()

	_, chanA, err := q.Subscribe(flatA)
	if err != nil {
		t.Fatalf("Subscribe to flat A failed: %v", err)
	}
	_, chanB, err := q.Subscribe(flatB)
	if err != nil {
		t.Fatalf("Subscribe to flat B failed: %v", err)
	}

	msg := mq.ExpenseMessage{ID: uuid.New(), Name: "Groceries", Amount: 3000, FlatID: flatA}
	if pubErr := q.Publish(msg); pubErr != nil {
		t.Fatalf("Publish failed: %v", pubErr)
	}

	received, ok := receiveMsgWithTimeout(t, chanA, 500*time.Millisecond)
	if !ok {
		t.Fatal("Flat A subscriber did not receive its message")
	}
	if received.ID != msg.ID {
		t.Errorf("Flat A received %+v, want %+v", received, msg)
	}

	select {
	case unexpected := <-chanB:
		t.Errorf("Flat B subscriber received a flat A message: %+v", unexpected)
	default:
	}
}

func TestChannelMessageQueueFullSubscriberDropsMessage(t *testing.T) {
	t.Parallel()
	q := NewChannelMessageQueue[mq.MemberMessage](mq.ActionCreate)
	flatID := uuid.New()

	_, subChan, err := q.Subscribe(flatID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Fill the subscriber buffer without reading.
	for i := 0; i < subscriberBuffer; i++ {
		if pubErr := q.Publish(mq.MemberMessage{FlatID: flatID, MemberID: uuid.New()}); pubErr != nil {
			t.Fatalf("Publish %d failed: %v", i, pubErr)
		}
	}

	// One more overflows and reports the drop.
	err = q.Publish(mq.MemberMessage{FlatID: flatID, MemberID: uuid.New()})
	if err != ErrQueueFull {
		t.Errorf("Expected ErrQueueFull for overflowing publish, got %v", err)
	}

	// The buffered messages are all still deliverable.
	for i := 0; i < subscriberBuffer; i++ {
		if _, ok := receiveMsgWithTimeout(t, subChan, 500*time.Millisecond); !ok {
			t.Fatalf("Failed to drain buffered message %d", i)
		}
	}
}

func TestChannelMessageQueueDeSubscribeNonExistent(t *testing.T) {
	t.Parallel()
	q := NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionDelete)
	if err := q.DeSubscribe(uuid.New()); err != ErrSubscriberNotFound {
		t.Errorf("Expected ErrSubscriberNotFound, got %v", err)
	}
}

func TestNewGoChanLedgerMessageQueueWrapper(t *testing.T) {
	t.Parallel()
	wrapper := NewGoChanLedgerMessageQueueWrapper()

	validExpenseActions := []mq.Action{mq.ActionCreate, mq.ActionUpdate, mq.ActionDelete}
	for _, action := range validExpenseActions {
		q := wrapper.GetExpenseMessageQueue(action)
		if q == nil {
			t.Errorf("GetExpenseMessageQueue(%v) returned nil", action)
			continue
		}
		if q.GetAction() != action {
			t.Errorf("GetExpenseMessageQueue(%v) returned queue with action %v", action, q.GetAction())
		}
	}
	if q := wrapper.GetExpenseMessageQueue(mq.Action(99)); q != nil {
		t.Errorf("GetExpenseMessageQueue(Action(99)) expected nil, got %T", q)
	}

	// membership has no update action
	if q := wrapper.GetMemberMessageQueue(mq.ActionUpdate); q != nil {
		t.Errorf("GetMemberMessageQueue(ActionUpdate) expected nil, got %T", q)
	}
	if q := wrapper.GetMemberMessageQueue(mq.ActionCreate); q == nil {
		t.Error("GetMemberMessageQueue(ActionCreate) returned nil")
	}

	if wrapper.GetReminderDueMessageQueue() == nil {
		t.Error("GetReminderDueMessageQueue returned nil")
	}
}

func TestSubscribeProcessorTransformsAndForwards(t *testing.T) {
	t.Parallel()
	q := NewChannelMessageQueue[mq.ExpenseMessage](mq.ActionCreate)
	flatID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	output := make(chan string)
	mq.SubscribeProcessor(flatID, ctx, q, func(msg mq.ExpenseMessage) (string, bool, error) {
		if msg.Name == "skip me" {
			return "", true, nil
		}
		return msg.Name, false, nil
	}, output)

	// The processor subscribes asynchronously; wait for its subscription.
	deadline := time.Now().Add(time.Second)
	for {
		q.mu.RLock()
		subscribed := len(q.subscribers) > 0
		q.mu.RUnlock()
		if subscribed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("processor never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := q.Publish(mq.ExpenseMessage{ID: uuid.New(), Name: "skip me", FlatID: flatID}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := q.Publish(mq.ExpenseMessage{ID: uuid.New(), Name: "keep me", FlatID: flatID}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, ok := receiveMsgWithTimeout(t, output, time.Second)
	if !ok {
		t.Fatal("processor did not forward any message")
	}
	if got != "keep me" {
		t.Errorf("processor forwarded %q, want %q (skipped message leaked)", got, "keep me")
	}

	// Cancelling the context closes the output stream.
	cancel()
	deadline = time.Now().Add(time.Second)
	for !isChanClosed(output) {
		if time.Now().After(deadline) {
			t.Fatal("output stream not closed after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
