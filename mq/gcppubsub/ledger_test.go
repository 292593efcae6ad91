package gcppubsub_test

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"flatfin/mq/gcppubsub"
	"flatfin/mq/mq"
)

// --- Test Pre-requisite ---
// This test suite requires the Google Cloud Pub/Sub emulator to be running.
// Before running the tests, start the emulator using the gcloud CLI:
//
//	gcloud beta emulators pubsub start --project=test-project
//
// The tests will automatically detect the PUBSUB_EMULATOR_HOST environment
// variable set by the emulator. If it's not set, all tests will be skipped.
// The project ID used here ("test-project") must match the one used to start the emulator.
const testProjectID = "test-project"

// getTestWrapper connects to the Pub/Sub emulator and creates a new wrapper for testing.
// It skips the test if the emulator is not running.
func getTestWrapper(t *testing.T) mq.LedgerMessageQueueWrapper {
	t.Helper()
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		t.Skip("Skipping test: PUBSUB_EMULATOR_HOST environment variable not set. Please start the Pub/Sub emulator.")
	}

	ctx := context.Background()
	wrapper, err := gcppubsub.NewGCPLedgerMessageQueueWrapper(ctx, testProjectID)
	if err != nil {
		t.Fatalf("Failed to create GCPLedgerMessageQueueWrapper for emulator: %v", err)
	}
	return wrapper
}

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

func TestWrapperGetters(t *testing.T) {
	wrapper := getTestWrapper(t)

	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionUpdate, mq.ActionDelete} {
		if q := wrapper.GetExpenseMessageQueue(action); q == nil {
			t.Errorf("GetExpenseMessageQueue(%v) returned nil", action)
		}
	}
	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionDelete} {
		if q := wrapper.GetMemberMessageQueue(action); q == nil {
			t.Errorf("GetMemberMessageQueue(%v) returned nil", action)
		}
	}
	// Update is not implemented for the member stream
	if q := wrapper.GetMemberMessageQueue(mq.ActionUpdate); q != nil {
		t.Errorf("GetMemberMessageQueue(ActionUpdate) expected nil, got %T", q)
	}
	if wrapper.GetReminderDueMessageQueue() == nil {
		t.Error("GetReminderDueMessageQueue returned nil")
	}
}

func TestExpenseQueueLifecycle(t *testing.T) {
	wrapper := getTestWrapper(t)
	eq := wrapper.GetExpenseMessageQueue(mq.ActionCreate)
	flatID := uuid.New()
	msgToPublish := mq.ExpenseMessage{
		ID:     uuid.New(),
		Name:   "Weekly groceries",
		Amount: 4250,
		PaidBy: uuid.New(),
		FlatID: flatID,
	}

	subID, rcvChan, err := eq.Subscribe(flatID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	// Allow time for subscription to be ready on the emulator backend
	time.Sleep(2 * time.Second)

	if err := eq.Publish(msgToPublish); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	receivedMsg, ok := receiveMsgWithTimeout(t, rcvChan, 30*time.Second)
	if !ok {
		t.Fatal("Timeout or channel closed while waiting for ExpenseMessage")
	}
	if !reflect.DeepEqual(receivedMsg, msgToPublish) {
		t.Errorf("Received message\n%+v\ndoes not match published message\n%+v", receivedMsg, msgToPublish)
	}

	if err := eq.DeSubscribe(subID); err != nil {
		t.Fatalf("DeSubscribe failed: %v", err)
	}
}

func TestExpenseQueueTopicFilter(t *testing.T) {
	wrapper := getTestWrapper(t)
	eq := wrapper.GetExpenseMessageQueue(mq.ActionCreate)
	flatA := uuid.New()
	flatB := uuid.New()
	msgA := mq.ExpenseMessage{ID: uuid.New(), FlatID: flatA, Name: "Flat A expense"}
	msgB := mq.ExpenseMessage{ID: uuid.New(), FlatID: flatB, Name: "Flat B expense"}

	subA, rcvA, err := eq.Subscribe(flatA)
	if err != nil {
		t.Fatalf("Subscribe for flat A failed: %v", err)
	}
	subB, rcvB, err := eq.Subscribe(flatB)
	if err != nil {
		t.Fatalf("Subscribe for flat B failed: %v", err)
	}
	defer func() { _ = eq.DeSubscribe(subA) }()
	defer func() { _ = eq.DeSubscribe(subB) }()

	time.Sleep(2 * time.Second)
	if err := eq.Publish(msgA); err != nil {
		t.Fatalf("Publish msgA failed: %v", err)
	}
	if err := eq.Publish(msgB); err != nil {
		t.Fatalf("Publish msgB failed: %v", err)
	}

	recA, okA := receiveMsgWithTimeout(t, rcvA, 30*time.Second)
	if !okA || recA.ID != msgA.ID {
		t.Errorf("Sub A: expected %+v, got %+v (ok: %t)", msgA, recA, okA)
	}
	recB, okB := receiveMsgWithTimeout(t, rcvB, 30*time.Second)
	if !okB || recB.ID != msgB.ID {
		t.Errorf("Sub B: expected %+v, got %+v (ok: %t)", msgB, recB, okB)
	}

	// Neither subscriber should see the other flat's message.
	if _, leaked := receiveMsgWithTimeout(t, rcvA, 1*time.Second); leaked {
		t.Error("Sub A received a message for flat B")
	}
	if _, leaked := receiveMsgWithTimeout(t, rcvB, 1*time.Second); leaked {
		t.Error("Sub B received a message for flat A")
	}
}

func TestReminderDueQueue(t *testing.T) {
	wrapper := getTestWrapper(t)
	rq := wrapper.GetReminderDueMessageQueue()
	userID := uuid.New()
	msgToPublish := mq.ReminderDueMessage{
		ID:      uuid.New(),
		Title:   "Rent due",
		Type:    "rent",
		Amount:  85000,
		DueDate: time.Now().UTC().Truncate(time.Second),
		UserID:  userID,
		FlatID:  uuid.New(),
	}

	subID, rcvChan, err := rq.Subscribe(userID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer func() { _ = rq.DeSubscribe(subID) }()

	time.Sleep(2 * time.Second)
	if err := rq.Publish(msgToPublish); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	receivedMsg, ok := receiveMsgWithTimeout(t, rcvChan, 30*time.Second)
	if !ok {
		t.Fatal("Timeout or channel closed while waiting for ReminderDueMessage")
	}
	if receivedMsg.ID != msgToPublish.ID || receivedMsg.UserID != userID {
		t.Errorf("Received %+v, want %+v", receivedMsg, msgToPublish)
	}
}
