package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tow/internal/service"
)

// ReportHandler handles HTTP requests for financial reports.
type ReportHandler struct {
	statsService *service.StatsService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(statsService *service.StatsService) *ReportHandler {
	return &ReportHandler{statsService: statsService}
}

// ReportResponse is the HTTP representation of a transaction report.
type ReportResponse struct {
	TotalRevenue   int64                 `json:"total_revenue"`
	TotalDeposits  int64                 `json:"total_deposits"`
	TotalDebits    int64                 `json:"total_debits"`
	TotalBalance   int64                 `json:"total_balance"`
	CompletedTrips int                   `json:"completed_trips"`
	Transactions   []TransactionResponse `json:"transactions"`
}

// Transactions handles GET /v1/reports/transactions?from=&to=
//
// Bounds are RFC 3339 timestamps; a missing bound leaves that side of the
// range open.
func (h *ReportHandler) Transactions(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid 'from' timestamp"})
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid 'to' timestamp"})
		return
	}

	report, err := h.statsService.TransactionReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ReportResponse{
		TotalRevenue:   report.Stats.TotalRevenue,
		TotalDeposits:  report.Stats.TotalDeposits,
		TotalDebits:    report.Stats.TotalDebits,
		TotalBalance:   report.Stats.TotalBalance,
		CompletedTrips: report.Stats.CompletedTrips,
		Transactions:   make([]TransactionResponse, 0, len(report.Transactions)),
	}
	for _, tx := range report.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse(tx))
	}

	respondJSON(c, http.StatusOK, resp)
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
