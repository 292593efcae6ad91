package web

import (
	"context"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/mq/mq"
)

// sseEvent is the common envelope all streams render. Event names follow
// "<stream>.<action>".
type sseEvent struct {
	Event string
	Data  interface{}
}

type expenseEventData struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Amount   string           `json:"amount"`
	Category string           `json:"category"`
	PaidBy   string           `json:"paidBy"`
	Changes  []mq.FieldChange `json:"changes,omitempty"`
}

type memberEventData struct {
	FlatID   string `json:"flatId"`
	MemberID string `json:"memberId"`
}

type reminderEventData struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Amount  string `json:"amount"`
	DueDate string `json:"dueDate"`
}

func expenseEventTransform(action mq.Action) func(mq.ExpenseMessage) (sseEvent, bool, error) {
	return func(msg mq.ExpenseMessage) (sseEvent, bool, error) {
		if msg.ID == uuid.Nil {
			return sseEvent{}, true, nil
		}
		return sseEvent{
			Event: "expense." + action.String(),
			Data: expenseEventData{
				ID:       msg.ID.String(),
				Name:     msg.Name,
				Amount:   msg.Amount.String(),
				Category: msg.Category.String(),
				PaidBy:   msg.PaidBy.String(),
				Changes:  msg.Changes,
			},
		}, false, nil
	}
}

func memberEventTransform(action mq.Action) func(mq.MemberMessage) (sseEvent, bool, error) {
	return func(msg mq.MemberMessage) (sseEvent, bool, error) {
		if msg.MemberID == uuid.Nil {
			return sseEvent{}, true, nil
		}
		return sseEvent{
			Event: "member." + action.String(),
			Data: memberEventData{
				FlatID:   msg.FlatID.String(),
				MemberID: msg.MemberID.String(),
			},
		}, false, nil
	}
}

func reminderEventTransform(msg mq.ReminderDueMessage) (sseEvent, bool, error) {
	if msg.ID == uuid.Nil {
		return sseEvent{}, true, nil
	}
	return sseEvent{
		Event: "reminder.due",
		Data: reminderEventData{
			ID:      msg.ID.String(),
			Title:   msg.Title,
			Type:    msg.Type,
			Amount:  msg.Amount.String(),
			DueDate: msg.DueDate.Format(dateLayout),
		},
	}, false, nil
}

// mergeStreams fans several per-queue channels into one, closing the merged
// channel once every source is done. Forwarders give up on ctx cancellation so
// a gone client never strands them.
func mergeStreams(ctx context.Context, streams []chan sseEvent) <-chan sseEvent {
	merged := make(chan sseEvent)
	var wg sync.WaitGroup
	wg.Add(len(streams))
	for _, stream := range streams {
		go func(ch <-chan sseEvent) {
			defer wg.Done()
			for ev := range ch {
				select {
				case merged <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(stream)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged
}

// flatEvents streams the flat's expense and membership events over SSE until
// the client disconnects.
func (s *Service) flatEvents(c *gin.Context) {
	flatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	if _, err := s.store.GetFlat(flatID); err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	var streams []chan sseEvent

	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionUpdate, mq.ActionDelete} {
		if queue := s.queue.GetExpenseMessageQueue(action); queue != nil {
			out := make(chan sseEvent)
			mq.SubscribeProcessor(flatID, ctx, queue, expenseEventTransform(action), out)
			streams = append(streams, out)
		}
	}
	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionDelete} {
		if queue := s.queue.GetMemberMessageQueue(action); queue != nil {
			out := make(chan sseEvent)
			mq.SubscribeProcessor(flatID, ctx, queue, memberEventTransform(action), out)
			streams = append(streams, out)
		}
	}

	s.streamEvents(c, mergeStreams(ctx, streams))
}

// userEvents streams due-reminder events for one user over SSE.
func (s *Service) userEvents(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	if _, err := s.store.GetUser(userID); err != nil {
		abortWithError(c, err)
		return
	}

	out := make(chan sseEvent)
	mq.SubscribeProcessor(userID, c.Request.Context(), s.queue.GetReminderDueMessageQueue(), reminderEventTransform, out)
	s.streamEvents(c, out)
}

func (s *Service) streamEvents(c *gin.Context, events <-chan sseEvent) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Event, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
