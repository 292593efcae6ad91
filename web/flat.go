package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
	"flatfin/mq/mq"
)

// joinCodeRetries bounds how often flat creation retries on a join code
// collision before giving up.
const joinCodeRetries = 5

func (s *Service) createFlat(c *gin.Context) {
	var req FlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if !VerifyStringRequest(req.Name) {
		abortBadRequest(c, "invalid flat name")
		return
	}
	creator, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		abortBadRequest(c, "invalid creator id")
		return
	}
	user, err := s.store.GetUser(creator)
	if err != nil {
		abortWithError(c, err)
		return
	}

	flat := &db.Flat{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedBy: creator,
		Members:   []uuid.UUID{creator},
		CreatedAt: time.Now(),
	}
	for attempt := 0; ; attempt++ {
		flat.JoinCode = db.NewJoinCode()
		err = s.store.CreateFlat(flat)
		if err == nil {
			break
		}
		if attempt+1 >= joinCodeRetries || !strings.Contains(err.Error(), "already exists") {
			abortWithError(c, err)
			return
		}
	}

	user.FlatID = flat.ID
	if err := s.store.UpdateUser(user); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flatToResponse(flat))
}

func (s *Service) getFlat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	flat, err := s.store.GetFlat(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatToResponse(flat))
}

func (s *Service) updateFixedCosts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	var req FixedCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if req.RentDueDay < 0 || req.RentDueDay > 31 {
		abortBadRequest(c, "rent due day must be between 1 and 31")
		return
	}

	costs := db.FixedCosts{RentDueDay: req.RentDueDay}
	if costs.Rent, err = parseOptionalMoney(req.Rent); err != nil {
		abortWithError(c, err)
		return
	}
	if costs.ElectricityCap, err = parseOptionalMoney(req.ElectricityCap); err != nil {
		abortWithError(c, err)
		return
	}
	if costs.InternetBill, err = parseOptionalMoney(req.InternetBill); err != nil {
		abortWithError(c, err)
		return
	}

	flat, err := s.store.GetFlat(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	flat.FixedCosts = costs
	if err := s.store.UpdateFlat(flat); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatToResponse(flat))
}

func parseOptionalMoney(s string) (ledger.Money, error) {
	if s == "" {
		return 0, nil
	}
	return ledger.ParseMoney(s)
}

func (s *Service) joinFlat(c *gin.Context) {
	var req JoinFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		abortBadRequest(c, "invalid user id")
		return
	}
	user, err := s.store.GetUser(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	flat, err := s.store.GetFlatByCode(strings.ToUpper(strings.TrimSpace(req.JoinCode)))
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.store.FlatMemberAdd(flat.ID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	user.FlatID = flat.ID
	if err := s.store.UpdateUser(user); err != nil {
		abortWithError(c, err)
		return
	}
	s.publishMember(mq.ActionCreate, flat.ID, userID)

	flat, err = s.store.GetFlat(flat.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatToResponse(flat))
}

func (s *Service) addMember(c *gin.Context) {
	flatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		abortBadRequest(c, "invalid member id")
		return
	}
	if _, err := s.store.GetUser(memberID); err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.store.FlatMemberAdd(flatID, memberID); err != nil {
		abortWithError(c, err)
		return
	}
	s.publishMember(mq.ActionCreate, flatID, memberID)

	flat, err := s.store.GetFlat(flatID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatToResponse(flat))
}

func (s *Service) removeMember(c *gin.Context) {
	flatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	memberID, err := uuid.Parse(c.Param("member"))
	if err != nil {
		abortBadRequest(c, "invalid member id")
		return
	}

	if err := s.store.FlatMemberRemove(flatID, memberID); err != nil {
		abortWithError(c, err)
		return
	}
	s.publishMember(mq.ActionDelete, flatID, memberID)

	flat, err := s.store.GetFlat(flatID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatToResponse(flat))
}

func (s *Service) deleteFlat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	if err := s.store.DeleteFlat(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}

// flatBalances reports the acting member's netted position against every
// flatmate, derived from the flat's shared expenses.
func (s *Service) flatBalances(c *gin.Context) {
	flatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	member, err := uuid.Parse(c.Query("member"))
	if err != nil {
		abortBadRequest(c, "invalid member id")
		return
	}
	flat, err := s.store.GetFlat(flatID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !flat.HasMember(member) {
		abortBadRequest(c, "member does not belong to this flat")
		return
	}

	kind := db.KindShared
	expenses, err := s.store.QueryExpenses(c.Request.Context(), db.ExpenseFilter{FlatID: flatID, Kind: &kind})
	if err != nil {
		abortWithError(c, err)
		return
	}

	shared := make([]ledger.SharedExpense, 0, len(expenses))
	for _, e := range expenses {
		shared = append(shared, ledger.SharedExpense{PaidBy: e.CreatedBy, Splits: e.Splits})
	}

	balances := ledger.BalancesFor(member, shared)
	resp := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, BalanceResponse{Member: b.Member.String(), Amount: b.Amount.String()})
	}
	c.JSON(http.StatusOK, gin.H{"member": member.String(), "balances": resp})
}

// flatSettlements suggests the shortest repayment plan that clears the
// flat's shared-expense balances.
func (s *Service) flatSettlements(c *gin.Context) {
	flatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid flat id")
		return
	}
	if _, err := s.store.GetFlat(flatID); err != nil {
		abortWithError(c, err)
		return
	}

	kind := db.KindShared
	expenses, err := s.store.QueryExpenses(c.Request.Context(), db.ExpenseFilter{FlatID: flatID, Kind: &kind})
	if err != nil {
		abortWithError(c, err)
		return
	}

	shared := make([]ledger.SharedExpense, 0, len(expenses))
	for _, e := range expenses {
		shared = append(shared, ledger.SharedExpense{PaidBy: e.CreatedBy, Splits: e.Splits})
	}

	transfers := ledger.SettleUp(ledger.NetPositions(shared))
	resp := make([]TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		resp = append(resp, TransferResponse{
			From:   t.From.String(),
			To:     t.To.String(),
			Amount: t.Amount.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"flatId": flatID.String(), "transfers": resp})
}

func (s *Service) publishMember(action mq.Action, flatID, memberID uuid.UUID) {
	queue := s.queue.GetMemberMessageQueue(action)
	if queue == nil {
		return
	}
	if err := queue.Publish(mq.MemberMessage{FlatID: flatID, MemberID: memberID}); err != nil {
		logPublishError("member", action, err)
	}
}
