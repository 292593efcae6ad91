package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
)

func (s *Service) createBudget(c *gin.Context) {
	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
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
	limit, err := ledger.ParseMoney(req.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if limit <= 0 {
		abortWithError(c, fmt.Errorf("%w: limit must be positive", ledger.ErrInvalidAmount))
		return
	}
	period, ok := ledger.ParseBudgetPeriod(req.Period)
	if !ok {
		abortBadRequest(c, "unknown budget period")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		abortBadRequest(c, "bad start date")
		return
	}

	budget := &db.Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Limit:     limit,
		Period:    period,
		StartDate: start,
	}
	if req.Category != nil {
		category, ok := ledger.ParseCategory(*req.Category)
		if !ok {
			abortBadRequest(c, "unknown category")
			return
		}
		budget.Category = &category
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			abortBadRequest(c, "bad end date")
			return
		}
		if !start.Before(end) {
			abortBadRequest(c, "end date must come after start date")
			return
		}
		budget.EndDate = &end
	}

	if err := s.store.PutBudget(budget); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, budgetToResponse(budget))
}

func (s *Service) getBudget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid budget id")
		return
	}
	budget, err := s.store.GetBudget(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgetToResponse(budget))
}

// listBudgets returns the user's budgets active at the given instant
// (default now).
func (s *Service) listBudgets(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	at := timeNow()
	if v := c.Query("at"); v != "" {
		if at, err = parseDate(v); err != nil {
			abortBadRequest(c, "bad at date")
			return
		}
	}

	budgets, err := s.store.ListBudgets(userID, at)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		resp[i] = budgetToResponse(&budgets[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) deleteBudget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid budget id")
		return
	}
	if err := s.store.DeleteBudget(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}

// budgetStatus evaluates the budget over the period window containing the
// reference instant (default now).
func (s *Service) budgetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid budget id")
		return
	}
	budget, err := s.store.GetBudget(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ref := timeNow()
	if v := c.Query("at"); v != "" {
		if ref, err = parseDate(v); err != nil {
			abortBadRequest(c, "bad at date")
			return
		}
	}

	start, end := ledger.PeriodWindow(budget.Period, ref)
	expenses, err := s.store.QueryExpenses(c.Request.Context(), db.ExpenseFilter{
		CreatedBy: budget.UserID,
		Start:     &start,
		End:       &end,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	entries := make([]ledger.Entry, len(expenses))
	for i, e := range expenses {
		entries[i] = ledger.Entry{ID: e.ID, Name: e.Name, Amount: e.Amount, Category: e.Category, Date: e.Date}
	}
	report := ledger.EvaluateBudget(budget.Limit, budget.Category, start, end, entries)

	c.JSON(http.StatusOK, BudgetStatusResponse{
		BudgetID:  budget.ID.String(),
		Consumed:  report.Consumed.String(),
		Remaining: report.Remaining.String(),
		Status:    report.Status.String(),
	})
}
