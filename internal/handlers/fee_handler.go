package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/services"
)

type FeeHandler struct {
	feeService     *services.FeeService
	billingService *services.BillingService
}

func NewFeeHandler(feeService *services.FeeService, billingService *services.BillingService) *FeeHandler {
	return &FeeHandler{feeService: feeService, billingService: billingService}
}

// FeeRequest is the body for creating or updating a fee definition
type FeeRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"300.00"`
	Period      string          `json:"period" example:"monthly"`
	CategoryID  *uint           `json:"category_id"`
}

func (r FeeRequest) input() services.FeeInput {
	return services.FeeInput{
		Name:        r.Name,
		Description: r.Description,
		Amount:      r.Amount,
		Period:      r.Period,
		CategoryID:  r.CategoryID,
	}
}

// GenerateRequest selects the period and due date of a generation run
type GenerateRequest struct {
	BillingPeriod string `json:"billing_period" example:"2024-03"`
	DueDate       string `json:"due_date" example:"2024-03-10"`
}

// @Summary List Fees
// @Description Get a paginated list of fee definitions
// @Tags Fees
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name"
// @Param period query string false "monthly, annual or one_time"
// @Param category_id query int false "Category ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /fees [get]
func (h *FeeHandler) Index(c *gin.Context) {
	query := listQuery(c, "period", "category_id")
	fees, total, err := h.feeService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.FeeDefinitionResponse, 0, len(fees))
	for i := range fees {
		responses = append(responses, fees[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"fees": responses, "pagination": pagination(query, total)})
}

// @Summary Get Fee
// @Tags Fees
// @Produce json
// @Param fee_id path int true "Fee ID"
// @Success 200 {object} models.FeeDefinitionResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /fees/{fee_id} [get]
func (h *FeeHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "fee_id")
	if !ok {
		return
	}
	fee, err := h.feeService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": fee.ToResponse()})
}

// @Summary Create Fee
// @Description Create a fee definition (Admin)
// @Tags Fees
// @Accept json
// @Produce json
// @Param request body FeeRequest true "Fee data"
// @Success 201 {object} models.FeeDefinitionResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req FeeRequest
	if err := BindNestedOrFlat(c, "fee", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	fee, err := h.feeService.Create(c.Request.Context(), req.input(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"fee": fee.ToResponse(), "message": "Cuota creada"})
}

// @Summary Update Fee
// @Description Update a fee definition (Admin). Issued invoices keep their amount.
// @Tags Fees
// @Accept json
// @Produce json
// @Param fee_id path int true "Fee ID"
// @Param request body FeeRequest true "Fee data"
// @Success 200 {object} models.FeeDefinitionResponse
// @Security BearerAuth
// @Router /fees/{fee_id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "fee_id")
	if !ok {
		return
	}
	var req FeeRequest
	if err := BindNestedOrFlat(c, "fee", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	fee, err := h.feeService.Update(c.Request.Context(), id, req.input(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": fee.ToResponse(), "message": "Cuota actualizada"})
}

// @Summary Delete Fee
// @Description Delete a fee definition that has no invoices (Admin)
// @Tags Fees
// @Produce json
// @Param fee_id path int true "Fee ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /fees/{fee_id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "fee_id")
	if !ok {
		return
	}
	if err := h.feeService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cuota eliminada"})
}

// @Summary Generate Invoices
// @Description Bill every eligible player for one fee. Running it twice for the same period creates nothing new.
// @Tags Billing
// @Accept json
// @Produce json
// @Param fee_id path int true "Fee ID"
// @Param request body GenerateRequest false "Billing period and due date"
// @Success 200 {object} services.GenerationResult
// @Security BearerAuth
// @Router /fees/{fee_id}/generate [post]
func (h *FeeHandler) Generate(c *gin.Context) {
	id, ok := paramID(c, "fee_id")
	if !ok {
		return
	}
	var req GenerateRequest
	if err := bindOptional(c, "generation", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
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

	result, err := h.billingService.Generate(c.Request.Context(), id, req.BillingPeriod, due, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// @Summary Generate Recurring Invoices
// @Description Bill every monthly and annual fee for a period (Admin)
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body GenerateRequest false "Billing period"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /fees/generate_recurring [post]
func (h *FeeHandler) GenerateRecurring(c *gin.Context) {
	var req GenerateRequest
	if err := bindOptional(c, "generation", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	results, err := h.billingService.GenerateRecurring(c.Request.Context(), req.BillingPeriod, actor(c))
	if err != nil && len(results) == 0 {
		respondError(c, err)
		return
	}

	body := gin.H{"results": results}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
