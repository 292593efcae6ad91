package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/mq/mq"
)

// Scanner wakes on an interval, looks up pending reminders falling due within
// the horizon, and publishes one due event per reminder. Each reminder is
// announced once per pending spell; snoozing or re-arming makes it eligible
// again.
type Scanner struct {
	store    db.LedgerDBWrapper
	queue    mq.ReminderDueMessageQueue
	interval time.Duration
	horizon  time.Duration

	mu        sync.Mutex
	announced map[uuid.UUID]struct{}
}

// NewScanner creates a scanner. interval is how often it wakes, horizon how
// far ahead of the due date an event fires.
func NewScanner(store db.LedgerDBWrapper, queue mq.ReminderDueMessageQueue, interval, horizon time.Duration) *Scanner {
	return &Scanner{
		store:     store,
		queue:     queue,
		interval:  interval,
		horizon:   horizon,
		announced: make(map[uuid.UUID]struct{}),
	}
}

// Run blocks scanning until ctx is done. Scan errors are logged, not fatal;
// the next tick retries.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.ScanOnce(ctx); err != nil {
			log.Printf("Reminder scan failed: %v", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// ScanOnce performs a single scan pass at the current time.
func (s *Scanner) ScanOnce(ctx context.Context) error {
	return s.scanAt(ctx, time.Now())
}

func (s *Scanner) scanAt(ctx context.Context, now time.Time) error {
	pending := db.StatusPending
	dueBefore := now.Add(s.horizon)
	reminders, err := s.store.QueryReminders(ctx, db.ReminderFilter{
		Status:    &pending,
		DueBefore: &dueBefore,
	})
	if err != nil {
		return err
	}

	due := make(map[uuid.UUID]struct{}, len(reminders))
	for _, r := range reminders {
		due[r.ID] = struct{}{}
		if s.alreadyAnnounced(r.ID) {
			continue
		}
		msg := mq.ReminderDueMessage{
			ID:      r.ID,
			Title:   r.Title,
			Type:    r.Type.String(),
			Amount:  r.Amount,
			DueDate: r.DueDate,
			UserID:  r.UserID,
			FlatID:  r.FlatID,
		}
		if err := s.queue.Publish(msg); err != nil {
			log.Printf("Failed to publish due event for reminder %s: %v", r.ID, err)
			continue
		}
		s.markAnnounced(r.ID)
	}

	// Reminders that left the due window (paid, snoozed past the horizon,
	// deleted) become eligible for a fresh announcement.
	s.mu.Lock()
	for id := range s.announced {
		if _, stillDue := due[id]; !stillDue {
			delete(s.announced, id)
		}
	}
	s.mu.Unlock()

	return nil
}

func (s *Scanner) alreadyAnnounced(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.announced[id]
	return ok
}

func (s *Scanner) markAnnounced(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announced[id] = struct{}{}
}

// NextOccurrence returns the re-armed follow-up for a recurring reminder that
// was just paid: a fresh pending reminder due RecurDays after the old due
// date. ok is false for one-shot reminders.
func NextOccurrence(r db.Reminder) (db.Reminder, bool) {
	if r.RecurDays <= 0 {
		return db.Reminder{}, false
	}
	next := r
	next.ID = uuid.New()
	next.Status = db.StatusPending
	next.DueDate = r.DueDate.AddDate(0, 0, r.RecurDays)
	return next, true
}
