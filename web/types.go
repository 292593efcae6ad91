package web

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/ledger"
)

const dateLayout = "2006-01-02"

// --- request payloads ---

type UserRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	AvatarURL string `json:"avatarUrl"`
	BankInfo  string `json:"bankInfo"`
}

type FlatRequest struct {
	Name      string `json:"name" binding:"required"`
	CreatedBy string `json:"createdBy" binding:"required"`
}

type FixedCostsRequest struct {
	Rent           string `json:"rent"`
	RentDueDay     int    `json:"rentDueDay"`
	ElectricityCap string `json:"electricityCap"`
	InternetBill   string `json:"internetBill"`
}

type JoinFlatRequest struct {
	JoinCode string `json:"joinCode" binding:"required"`
	UserID   string `json:"userId" binding:"required"`
}

type MemberRequest struct {
	MemberID string `json:"memberId" binding:"required"`
}

type ExpenseRequest struct {
	Name        string            `json:"name" binding:"required"`
	Amount      string            `json:"amount" binding:"required"`
	Category    string            `json:"category" binding:"required"`
	Kind        string            `json:"kind" binding:"required"`
	Date        string            `json:"date" binding:"required"`
	CreatedBy   string            `json:"createdBy" binding:"required"`
	FlatID      string            `json:"flatId"`
	SplitMethod string            `json:"splitMethod"`
	Splits      map[string]string `json:"splits"`
}

type BudgetRequest struct {
	UserID    string  `json:"userId" binding:"required"`
	Category  *string `json:"category"`
	Limit     string  `json:"limit" binding:"required"`
	Period    string  `json:"period" binding:"required"`
	StartDate string  `json:"startDate" binding:"required"`
	EndDate   *string `json:"endDate"`
}

type ReminderRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	DueDate     string `json:"dueDate" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
	FlatID      string `json:"flatId"`
	RecurDays   int    `json:"recurDays"`
}

// --- response payloads ---

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	BankInfo  string `json:"bankInfo,omitempty"`
	FlatID    string `json:"flatId,omitempty"`
}

type FixedCostsResponse struct {
	Rent           string `json:"rent"`
	RentDueDay     int    `json:"rentDueDay"`
	ElectricityCap string `json:"electricityCap"`
	InternetBill   string `json:"internetBill"`
}

type FlatResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	JoinCode   string             `json:"joinCode"`
	CreatedBy  string             `json:"createdBy"`
	Members    []string           `json:"members"`
	FixedCosts FixedCostsResponse `json:"fixedCosts"`
}

type ExpenseResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Amount      string            `json:"amount"`
	Category    string            `json:"category"`
	Kind        string            `json:"kind"`
	Date        string            `json:"date"`
	CreatedBy   string            `json:"createdBy"`
	FlatID      string            `json:"flatId,omitempty"`
	SplitMethod string            `json:"splitMethod,omitempty"`
	Splits      map[string]string `json:"splits,omitempty"`
}

type BalanceResponse struct {
	Member string `json:"member"`
	Amount string `json:"amount"`
}

type TransferResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BudgetResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Category  *string `json:"category,omitempty"`
	Limit     string  `json:"limit"`
	Period    string  `json:"period"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate,omitempty"`
}

type BudgetStatusResponse struct {
	BudgetID  string `json:"budgetId"`
	Consumed  string `json:"consumed"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
}

type ReminderResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	UserID      string `json:"userId"`
	FlatID      string `json:"flatId,omitempty"`
	RecurDays   int    `json:"recurDays,omitempty"`
}

type TrendPointResponse struct {
	Label string `json:"label"`
	Total string `json:"total"`
}

type ReportResponse struct {
	Total         string               `json:"total"`
	PreviousTotal string               `json:"previousTotal"`
	ByCategory    map[string]string    `json:"byCategory"`
	Trend         []TrendPointResponse `json:"trend"`
	Top           []ExpenseResponse    `json:"top"`
}

// --- request string validation ---

func IsSecureString(s string) bool {
	allowedSafeSymbols := map[rune]bool{
		'_': true,
		'-': true,
		'.': true,
		'@': true,
		'#': true,
		' ': true,
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if _, ok := allowedSafeSymbols[r]; !ok {
				return false
			}
		}
	}
	return true
}

func VerifyStringRequest(s string) bool {
	if len(s) == 0 {
		return false
	}
	if len(s) > 100 {
		return false
	}
	return IsSecureString(s)
}

// --- converters ---

func userToResponse(u *db.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		BankInfo:  u.BankInfo,
	}
	if u.FlatID != uuid.Nil {
		resp.FlatID = u.FlatID.String()
	}
	return resp
}

func flatToResponse(f *db.Flat) FlatResponse {
	members := make([]string, len(f.Members))
	for i, m := range f.Members {
		members[i] = m.String()
	}
	return FlatResponse{
		ID:        f.ID.String(),
		Name:      f.Name,
		JoinCode:  f.JoinCode,
		CreatedBy: f.CreatedBy.String(),
		Members:   members,
		FixedCosts: FixedCostsResponse{
			Rent:           f.FixedCosts.Rent.String(),
			RentDueDay:     f.FixedCosts.RentDueDay,
			ElectricityCap: f.FixedCosts.ElectricityCap.String(),
			InternetBill:   f.FixedCosts.InternetBill.String(),
		},
	}
}

func expenseToResponse(e *db.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:        e.ID.String(),
		Name:      e.Name,
		Amount:    e.Amount.String(),
		Category:  e.Category.String(),
		Kind:      e.Kind.String(),
		Date:      e.Date.Format(dateLayout),
		CreatedBy: e.CreatedBy.String(),
	}
	if e.Shared() {
		resp.FlatID = e.FlatID.String()
		resp.SplitMethod = e.SplitMethod.String()
		resp.Splits = make(map[string]string, len(e.Splits))
		for member, share := range e.Splits {
			resp.Splits[member.String()] = share.String()
		}
	}
	return resp
}

func entryToResponse(e ledger.Entry) ExpenseResponse {
	return ExpenseResponse{
		ID:       e.ID.String(),
		Name:     e.Name,
		Amount:   e.Amount.String(),
		Category: e.Category.String(),
		Date:     e.Date.Format(dateLayout),
	}
}

func budgetToResponse(b *db.Budget) BudgetResponse {
	resp := BudgetResponse{
		ID:        b.ID.String(),
		UserID:    b.UserID.String(),
		Limit:     b.Limit.String(),
		Period:    b.Period.String(),
		StartDate: b.StartDate.Format(dateLayout),
	}
	if b.Category != nil {
		name := b.Category.String()
		resp.Category = &name
	}
	if b.EndDate != nil {
		end := b.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	return resp
}

func reminderToResponse(r *db.Reminder) ReminderResponse {
	resp := ReminderResponse{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type.String(),
		Amount:      r.Amount.String(),
		DueDate:     r.DueDate.Format(dateLayout),
		Status:      r.Status.String(),
		UserID:      r.UserID.String(),
		RecurDays:   r.RecurDays,
	}
	if r.FlatID != uuid.Nil {
		resp.FlatID = r.FlatID.String()
	}
	return resp
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// timeNow is swappable in tests.
var timeNow = time.Now

// --- error rendering ---

// errBadInput marks request validation failures that are not ledger errors.
var errBadInput = errors.New("invalid request")

// abortWithError maps store and ledger errors onto HTTP statuses: unknown ids
// give 404, validation failures 400, unavailable backends 503.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errBadInput),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSplitMismatch),
		errors.Is(err, ledger.ErrInvalidMembership):
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "already"):
		// duplicate email, taken join code, paid reminder
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func abortBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
