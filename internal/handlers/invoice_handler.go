package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/clubfin-api/internal/middleware"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/services"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// AssignRequest bills one category for a fee outside the regular cycle
type AssignRequest struct {
	CategoryID uint   `json:"category_id"`
	DueDate    string `json:"due_date" example:"2024-03-20"`
}

// @Summary List Invoices
// @Description Administrators see every invoice; guardians only their own. Overdue is applied on read.
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "pending, overdue, in_review, paid or open"
// @Param fee_definition_id query int false "Fee ID"
// @Param player_id query int false "Player ID"
// @Param billing_period query string false "Billing period"
// @Param search query string false "Search by player name"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /invoices [get]
// @Router /me/invoices [get]
func (h *InvoiceHandler) Index(c *gin.Context) {
	query := listQuery(c, "status", "fee_definition_id", "player_id", "billing_period")

	var invoices []models.Invoice
	var total int64
	var err error
	if middleware.IsAdmin(c) {
		invoices, total, err = h.invoiceService.List(c.Request.Context(), query)
	} else {
		invoices, total, err = h.invoiceService.ListByGuardian(c.Request.Context(), middleware.GetUserID(c), query)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	today := h.invoiceService.Today()
	responses := make([]models.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, invoices[i].ToResponse(today))
	}
	c.JSON(http.StatusOK, gin.H{"invoices": responses, "pagination": pagination(query, total)})
}

// @Summary Get Invoice
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} models.InvoiceResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id} [get]
// @Router /me/invoices/{invoice_id} [get]
func (h *InvoiceHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "invoice_id")
	if !ok {
		return
	}

	var invoice *models.Invoice
	var err error
	if middleware.IsAdmin(c) {
		invoice, err = h.invoiceService.FindByID(c.Request.Context(), id)
	} else {
		invoice, err = h.invoiceService.FindForGuardian(c.Request.Context(), id, middleware.GetUserID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice.ToResponse(h.invoiceService.Today())})
}

// @Summary Assign Fee to Category
// @Description Bill every active player of a category for a fee (Admin). Players already billed for the fee are skipped.
// @Tags Billing
// @Accept json
// @Produce json
// @Param fee_id path int true "Fee ID"
// @Param request body AssignRequest true "Assignment"
// @Success 200 {object} services.GenerationResult
// @Security BearerAuth
// @Router /fees/{fee_id}/assign [post]
func (h *InvoiceHandler) Assign(c *gin.Context) {
	feeID, ok := paramID(c, "fee_id")
	if !ok {
		return
	}
	var req AssignRequest
	if err := BindNestedOrFlat(c, "assignment", &req); err != nil || req.CategoryID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id es obligatorio"})
		return
	}

	var due time.Time
	if req.DueDate != "" {
		parsed, err := models.ParseDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de vencimiento inválida"})
			return
		}
		due = parsed
	}

	result, err := h.invoiceService.BulkAssign(c.Request.Context(), feeID, req.CategoryID, due, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
