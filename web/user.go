package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/export"
)

func (s *Service) createUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if !VerifyStringRequest(req.Name) {
		abortBadRequest(c, "invalid user name")
		return
	}

	user := &db.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		BankInfo:  req.BankInfo,
	}
	if err := s.store.CreateUser(user); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (s *Service) getUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	user, err := s.store.GetUser(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (s *Service) updateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if !VerifyStringRequest(req.Name) {
		abortBadRequest(c, "invalid user name")
		return
	}

	user, err := s.store.GetUser(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	user.Name = req.Name
	user.Email = req.Email
	user.AvatarURL = req.AvatarURL
	user.BankInfo = req.BankInfo
	if err := s.store.UpdateUser(user); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

// exportUser streams everything stored for one user as a CSV download.
func (s *Service) exportUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	user, err := s.store.GetUser(id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	expenses, err := s.store.QueryExpenses(c.Request.Context(), db.ExpenseFilter{CreatedBy: id})
	if err != nil {
		abortWithError(c, err)
		return
	}
	reminders, err := s.store.QueryReminders(c.Request.Context(), db.ReminderFilter{UserID: id})
	if err != nil {
		abortWithError(c, err)
		return
	}
	budgets, err := s.store.ListBudgets(id, timeNow())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-export.csv", id))
	if err := export.WriteUserExport(c.Writer, *user, expenses, reminders, budgets); err != nil {
		abortWithError(c, err)
	}
}
