package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
	"flatfin/notify"
)

func (s *Service) createReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if !VerifyStringRequest(req.Title) {
		abortBadRequest(c, "invalid reminder title")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	if _, err := s.store.GetUser(userID); err != nil {
		abortWithError(c, err)
		return
	}
	reminderType, ok := db.ParseReminderType(req.Type)
	if !ok {
		abortBadRequest(c, "unknown reminder type")
		return
	}
	amount, err := ledger.ParseMoney(req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		abortBadRequest(c, "bad due date")
		return
	}
	if req.RecurDays < 0 {
		abortBadRequest(c, "recurDays cannot be negative")
		return
	}

	reminder := &db.Reminder{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Type:        reminderType,
		Amount:      amount,
		DueDate:     dueDate,
		Status:      db.StatusPending,
		UserID:      userID,
		RecurDays:   req.RecurDays,
	}
	if req.FlatID != "" {
		flatID, err := uuid.Parse(req.FlatID)
		if err != nil {
			abortBadRequest(c, "invalid flat id")
			return
		}
		if _, err := s.store.GetFlat(flatID); err != nil {
			abortWithError(c, err)
			return
		}
		reminder.FlatID = flatID
	}

	if err := s.store.PutReminder(reminder); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminderToResponse(reminder))
}

func (s *Service) getReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid reminder id")
		return
	}
	reminder, err := s.store.GetReminder(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminderToResponse(reminder))
}

// upcomingReminders lists the user's pending reminders due within the horizon
// (days query parameter, default 7).
func (s *Service) upcomingReminders(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	days := 7
	if v := c.Query("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days <= 0 {
			abortBadRequest(c, "days must be a positive integer")
			return
		}
	}

	pending := db.StatusPending
	dueBefore := timeNow().AddDate(0, 0, days)
	reminders, err := s.store.QueryReminders(c.Request.Context(), db.ReminderFilter{
		UserID:    userID,
		Status:    &pending,
		DueBefore: &dueBefore,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := make([]ReminderResponse, len(reminders))
	for i := range reminders {
		resp[i] = reminderToResponse(&reminders[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) snoozeReminder(c *gin.Context) {
	s.transitionReminder(c, db.StatusSnoozed)
}

// payReminder marks the reminder paid and, for recurring reminders, stores the
// re-armed follow-up due one recurrence later.
func (s *Service) payReminder(c *gin.Context) {
	s.transitionReminder(c, db.StatusPaid)
}

func (s *Service) transitionReminder(c *gin.Context, target db.ReminderStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid reminder id")
		return
	}
	if err := s.store.UpdateReminderStatus(id, target); err != nil {
		abortWithError(c, err)
		return
	}
	reminder, err := s.store.GetReminder(id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{"reminder": reminderToResponse(reminder)}
	if target == db.StatusPaid {
		if next, ok := notify.NextOccurrence(*reminder); ok {
			if err := s.store.PutReminder(&next); err != nil {
				abortWithError(c, err)
				return
			}
			resp["next"] = reminderToResponse(&next)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) deleteReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid reminder id")
		return
	}
	if err := s.store.DeleteReminder(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}
