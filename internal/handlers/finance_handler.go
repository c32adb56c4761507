package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/services"
)

type FinanceHandler struct {
	financeService *services.FinanceService
	exportService  *services.ExportService
}

func NewFinanceHandler(financeService *services.FinanceService, exportService *services.ExportService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService, exportService: exportService}
}

// TransactionRequest is a manual income or expense entry
type TransactionRequest struct {
	Direction   string          `json:"direction" example:"expense"`
	Category    string          `json:"category" example:"referee_fees"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"300.00"`
	Date        string          `json:"date" example:"2024-03-15"`
	SponsorID   *uint           `json:"sponsor_id"`
	PlayerID    *uint           `json:"player_id"`
}

// @Summary Finance Summary
// @Description Totals by invoice status plus the income, expense and balance of the transaction log (Admin)
// @Tags Finance
// @Produce json
// @Success 200 {object} services.FinanceSummary
// @Security BearerAuth
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	summary, err := h.financeService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Monthly Cash Flow
// @Description Income, expense and net per month of a year (Admin)
// @Tags Finance
// @Produce json
// @Param year query int false "Year (YYYY). Defaults to the current year."
// @Success 200 {object} []services.MonthlyFlow
// @Security BearerAuth
// @Router /finance/monthly [get]
func (h *FinanceHandler) CashFlow(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	flow, err := h.financeService.MonthlyCashFlow(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": flow})
}

// @Summary Income by Category
// @Description Income totals grouped by category over a date range (Admin)
// @Tags Finance
// @Produce json
// @Param start_date query string true "From date (YYYY-MM-DD)"
// @Param end_date query string true "To date (YYYY-MM-DD)"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /finance/income_by_category [get]
func (h *FinanceHandler) IncomeByCategory(c *gin.Context) {
	from, err := models.ParseDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date inválida"})
		return
	}
	to, err := models.ParseDate(c.Query("end_date"))
	if err != nil || to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date inválida"})
		return
	}

	totals, err := h.financeService.IncomeByCategory(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": totals})
}

// @Summary Recent Payments
// @Description Latest completed payments (Admin)
// @Tags Finance
// @Produce json
// @Param limit query int false "Max items" default(20)
// @Success 200 {object} []models.PaymentResponse
// @Security BearerAuth
// @Router /finance/recent_payments [get]
func (h *FinanceHandler) RecentPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	payments, err := h.financeService.RecentPayments(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

// @Summary List Transactions
// @Tags Finance
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param direction query string false "income or expense"
// @Param category query string false "Category"
// @Param start_date query string false "From date (YYYY-MM-DD)"
// @Param end_date query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /finance/transactions [get]
func (h *FinanceHandler) Transactions(c *gin.Context) {
	query := listQuery(c, "direction", "category", "start_date", "end_date")
	txs, total, err := h.financeService.ListTransactions(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "pagination": pagination(query, total)})
}

// @Summary Record Transaction
// @Description Add a manual income or expense entry (Admin)
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /finance/transactions [post]
func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := BindNestedOrFlat(c, "transaction", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	input := services.TransactionInput{
		Direction:   req.Direction,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		SponsorID:   req.SponsorID,
		PlayerID:    req.PlayerID,
	}
	if req.Date != "" {
		date, err := models.ParseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha inválida"})
			return
		}
		input.Date = date
	}

	tx, err := h.financeService.RecordTransaction(c.Request.Context(), input, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx, "message": "Movimiento registrado"})
}

// @Summary Export Finance Report
// @Description Download the finance report for a year as csv, xlsx or pdf (Admin)
// @Tags Finance
// @Produce application/octet-stream
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param year query int false "Year (YYYY)"
// @Success 200 {file} file "report"
// @Security BearerAuth
// @Router /finance/export [get]
func (h *FinanceHandler) Export(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	data, filename, contentType, err := h.exportService.Export(c.Request.Context(), c.DefaultQuery("format", services.ExportFormatCSV), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *FinanceHandler) year(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return h.financeService.Today().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Año inválido"})
		return 0, false
	}
	return year, true
}
