package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfin/db/db"
	"flatfin/export"
	"flatfin/ledger"
)

const defaultTopN = 5

type reportQuery struct {
	userID      uuid.UUID
	granularity ledger.Granularity
	period      ledger.ReportPeriod
	topN        int
}

func parseReportQuery(c *gin.Context) (reportQuery, error) {
	var q reportQuery

	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		return q, fmt.Errorf("invalid user id")
	}
	q.userID = userID

	now := timeNow()
	q.granularity = ledger.GranularityDaily
	switch c.DefaultQuery("granularity", "daily") {
	case "daily":
	case "monthly":
		q.granularity = ledger.GranularityMonthly
	default:
		return q, fmt.Errorf("granularity must be daily or monthly")
	}

	q.period = ledger.ReportPeriod{Year: now.Year(), Month: now.Month()}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("bad year")
		}
		q.period.Year = year
	}
	if v := c.Query("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return q, fmt.Errorf("bad month")
		}
		q.period.Month = time.Month(month)
	}

	q.topN = defaultTopN
	if v := c.Query("top"); v != "" {
		topN, err := strconv.Atoi(v)
		if err != nil || topN < 0 {
			return q, fmt.Errorf("top must be a non-negative integer")
		}
		q.topN = topN
	}
	return q, nil
}

// buildReport loads the user's expenses and aggregates the requested period
// plus the previous-period comparison total.
func (s *Service) buildReport(c *gin.Context, q reportQuery) (ledger.Report, ledger.Money, error) {
	expenses, err := s.store.QueryExpenses(c.Request.Context(), db.ExpenseFilter{CreatedBy: q.userID})
	if err != nil {
		return ledger.Report{}, 0, err
	}

	entries := make([]ledger.Entry, len(expenses))
	for i, e := range expenses {
		entries[i] = ledger.Entry{ID: e.ID, Name: e.Name, Amount: e.Amount, Category: e.Category, Date: e.Date}
	}

	report := ledger.BuildReport(entries, q.granularity, q.period, q.topN, time.UTC)
	previous := ledger.BuildReport(entries, q.granularity, q.period.Previous(q.granularity), 0, time.UTC)
	return report, previous.Total, nil
}

func (s *Service) getReport(c *gin.Context) {
	q, err := parseReportQuery(c)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	report, previousTotal, err := s.buildReport(c, q)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := ReportResponse{
		Total:         report.Total.String(),
		PreviousTotal: previousTotal.String(),
		ByCategory:    make(map[string]string, len(report.ByCategory)),
		Trend:         make([]TrendPointResponse, len(report.Trend)),
		Top:           make([]ExpenseResponse, len(report.Top)),
	}
	for category, amount := range report.ByCategory {
		resp.ByCategory[category.String()] = amount.String()
	}
	for i, point := range report.Trend {
		resp.Trend[i] = TrendPointResponse{Label: point.Label, Total: point.Total.String()}
	}
	for i, entry := range report.Top {
		resp.Top[i] = entryToResponse(entry)
	}
	c.JSON(http.StatusOK, resp)
}

// exportReport streams the same aggregation as a CSV download.
func (s *Service) exportReport(c *gin.Context) {
	q, err := parseReportQuery(c)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	report, previousTotal, err := s.buildReport(c, q)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%d-%02d.csv", q.period.Year, q.period.Month))
	if err := export.WriteReportCSV(c.Writer, report, previousTotal); err != nil {
		abortWithError(c, err)
	}
}
