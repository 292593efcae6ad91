package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
	"flatfin/libs/diff"
	"flatfin/mq/mq"
)

// buildExpense validates a request fully before anything is written: amounts,
// enums, membership and splits all check out or the request dies here.
func (s *Service) buildExpense(id uuid.UUID, req ExpenseRequest) (*db.Expense, error) {
	if !VerifyStringRequest(req.Name) {
		return nil, fmt.Errorf("%w: invalid expense name", errBadInput)
	}
	amount, err := ledger.ParseMoney(req.Amount)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ledger.ErrInvalidAmount)
	}
	category, ok := ledger.ParseCategory(req.Category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", errBadInput, req.Category)
	}
	kind, ok := db.ParseExpenseKind(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", errBadInput, req.Kind)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", errBadInput, req.Date)
	}
	creator, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid creator id", ledger.ErrInvalidMembership)
	}
	if _, err := s.store.GetUser(creator); err != nil {
		return nil, err
	}

	expense := &db.Expense{
		ID:        id,
		Name:      req.Name,
		Amount:    amount,
		Category:  category,
		Kind:      kind,
		Date:      date,
		CreatedBy: creator,
	}

	if kind == db.KindPersonal {
		if req.FlatID != "" || len(req.Splits) > 0 {
			return nil, fmt.Errorf("%w: personal expense cannot carry a flat or splits", ledger.ErrInvalidMembership)
		}
		return expense, nil
	}

	// shared from here on
	flatID, err := uuid.Parse(req.FlatID)
	if err != nil {
		return nil, fmt.Errorf("%w: shared expense needs a flat id", ledger.ErrInvalidMembership)
	}
	flat, err := s.store.GetFlat(flatID)
	if err != nil {
		return nil, err
	}
	if !flat.HasMember(creator) {
		return nil, fmt.Errorf("%w: creator %s is not a flat member", ledger.ErrInvalidMembership, creator)
	}
	method, ok := db.ParseSplitMethod(req.SplitMethod)
	if !ok {
		return nil, fmt.Errorf("%w: unknown split method %q", ledger.ErrSplitMismatch, req.SplitMethod)
	}

	expense.FlatID = flatID
	expense.SplitMethod = method

	switch method {
	case db.SplitEqual:
		expense.Splits, err = ledger.EqualSplit(amount, flat.Members)
	case db.SplitCustom:
		var shares map[uuid.UUID]ledger.Money
		shares, err = parseShares(req.Splits)
		if err == nil {
			expense.Splits, err = ledger.CustomSplit(amount, flat.Members, shares)
		}
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func parseShares(raw map[string]string) (map[uuid.UUID]ledger.Money, error) {
	shares := make(map[uuid.UUID]ledger.Money, len(raw))
	for member, amount := range raw {
		id, err := uuid.Parse(member)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid member id %q", ledger.ErrInvalidMembership, member)
		}
		share, err := ledger.ParseMoney(amount)
		if err != nil {
			return nil, err
		}
		shares[id] = share
	}
	return shares, nil
}

func (s *Service) createExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	expense, err := s.buildExpense(uuid.New(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.store.PutExpense(expense); err != nil {
		abortWithError(c, err)
		return
	}
	s.publishExpense(mq.ActionCreate, expense, nil)
	c.JSON(http.StatusCreated, expenseToResponse(expense))
}

func (s *Service) getExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid expense id")
		return
	}
	expense, err := s.store.GetExpense(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseToResponse(expense))
}

func (s *Service) updateExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid expense id")
		return
	}
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	before, err := s.store.GetExpense(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if before.CreatedBy.String() != req.CreatedBy {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the creator can update an expense"})
		return
	}

	after, err := s.buildExpense(id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	changes, err := diff.ExpenseChanges(*before, *after)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.store.PutExpense(after); err != nil {
		abortWithError(c, err)
		return
	}
	s.publishExpense(mq.ActionUpdate, after, changes)
	c.JSON(http.StatusOK, expenseToResponse(after))
}

func (s *Service) deleteExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid expense id")
		return
	}
	actor, err := uuid.Parse(c.Query("actor"))
	if err != nil {
		abortBadRequest(c, "invalid actor id")
		return
	}

	expense, err := s.store.GetExpense(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if expense.CreatedBy != actor {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the creator can delete an expense"})
		return
	}
	if err := s.store.DeleteExpense(id); err != nil {
		abortWithError(c, err)
		return
	}
	s.publishExpense(mq.ActionDelete, expense, nil)
	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}

func (s *Service) listExpenses(c *gin.Context) {
	var filter db.ExpenseFilter

	if v := c.Query("createdBy"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			abortBadRequest(c, "invalid createdBy id")
			return
		}
		filter.CreatedBy = id
	}
	if v := c.Query("flatId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			abortBadRequest(c, "invalid flat id")
			return
		}
		filter.FlatID = id
	}
	if v := c.Query("category"); v != "" {
		category, ok := ledger.ParseCategory(v)
		if !ok {
			abortBadRequest(c, "unknown category")
			return
		}
		filter.Category = &category
	}
	if v := c.Query("kind"); v != "" {
		kind, ok := db.ParseExpenseKind(v)
		if !ok {
			abortBadRequest(c, "unknown kind")
			return
		}
		filter.Kind = &kind
	}
	if v := c.Query("start"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			abortBadRequest(c, "bad start date")
			return
		}
		filter.Start = &start
	}
	if v := c.Query("end"); v != "" {
		end, err := parseDate(v)
		if err != nil {
			abortBadRequest(c, "bad end date")
			return
		}
		filter.End = &end
	}

	expenses, err := s.store.QueryExpenses(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = expenseToResponse(&expenses[i])
	}
	c.JSON(http.StatusOK, resp)
}

// publishExpense emits an event for shared expenses. Personal expenses have no
// flat topic to publish on.
func (s *Service) publishExpense(action mq.Action, e *db.Expense, changes []mq.FieldChange) {
	if !e.Shared() {
		return
	}
	queue := s.queue.GetExpenseMessageQueue(action)
	if queue == nil {
		return
	}
	msg := mq.ExpenseMessage{
		ID:       e.ID,
		Name:     e.Name,
		Amount:   e.Amount,
		Category: e.Category,
		PaidBy:   e.CreatedBy,
		FlatID:   e.FlatID,
		Changes:  changes,
	}
	if err := queue.Publish(msg); err != nil {
		logPublishError("expense", action, err)
	}
}
