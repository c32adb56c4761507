package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/middleware"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/services"
	"github.com/sjperalta/clubfin-api/internal/storage"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	invoiceService *services.InvoiceService
}

func NewPaymentHandler(paymentService *services.PaymentService, invoiceService *services.InvoiceService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, invoiceService: invoiceService}
}

// BulkPaymentRequest settles several invoices of one guardian at once
type BulkPaymentRequest struct {
	GuardianID uint    `json:"guardian_id"`
	InvoiceIDs []uint  `json:"invoice_ids"`
	Method     string  `json:"method" example:"cash"`
	Reference  string  `json:"reference" example:"CAJA-7"`
	Notes      *string `json:"notes"`
}

// RejectPaymentRequest is the request body for rejecting a payment
type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// @Summary List Payments
// @Description Get a paginated list of payments. Payments awaiting review come first. Guardians only see their own.
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "pending_review, completed or rejected"
// @Param method query string false "Payment method"
// @Param invoice_id query int false "Invoice ID"
// @Param guardian_id query int false "Guardian ID (Admin)"
// @Param start_date query string false "From date (YYYY-MM-DD)"
// @Param end_date query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
// @Router /me/payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := listQuery(c, "status", "method", "invoice_id", "guardian_id", "start_date", "end_date")
	if !middleware.IsAdmin(c) {
		query.Filters["guardian_id"] = strconv.FormatUint(uint64(middleware.GetUserID(c)), 10)
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses, "pagination": pagination(query, total)})
}

// @Summary Get Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !middleware.IsAdmin(c) && (payment.Invoice == nil || payment.Invoice.GuardianID != middleware.GetUserID(c)) {
		respondError(c, services.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Submit Payment
// @Description A guardian reports a payment for one of their invoices and attaches the proof. The invoice moves to in_review.
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Param proof formData file true "Proof of payment (pdf, jpg or png)"
// @Param method formData string true "bank_transfer, cash, card, check or other"
// @Param amount formData string false "Amount paid. Defaults to the invoice amount."
// @Param reference formData string false "Bank reference"
// @Param notes formData string false "Notes"
// @Success 201 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /me/invoices/{invoice_id}/payments [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
	invoiceID, ok := paramID(c, "invoice_id")
	if !ok {
		return
	}

	amount := decimal.Zero
	if raw := strings.TrimSpace(c.PostForm("amount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(c, services.ErrInvalidAmount)
			return
		}
		amount = parsed
	}

	file, header, err := c.Request.FormFile("proof")
	if err != nil {
		respondError(c, services.ErrMissingProof)
		return
	}
	defer file.Close()

	if header.Size > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo demasiado grande"})
		return
	}
	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de archivo inválido"})
		return
	}

	proof, err := h.paymentService.SaveProof(file, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	payment, err := h.paymentService.Submit(c.Request.Context(), services.SubmitInput{
		InvoiceID:  invoiceID,
		GuardianID: middleware.GetUserID(c),
		Amount:     amount,
		Method:     c.PostForm("method"),
		ProofPath:  proof,
		Reference:  optionalForm(c, "reference"),
		Notes:      optionalForm(c, "notes"),
	}, actor(c))
	if err != nil {
		h.paymentService.DiscardProof(proof)
		respondError(c, err)
		return
	}

	body := gin.H{"payment": payment.ToResponse(), "message": "Pago enviado a revisión"}
	if invoice, err := h.invoiceService.FindByID(c.Request.Context(), invoiceID); err == nil {
		body["invoice"] = invoice.ToResponse(h.invoiceService.Today())
	}
	c.JSON(http.StatusCreated, body)
}

// @Summary Submit Bulk Payment
// @Description Record one cash or transfer settlement covering several invoices of a guardian (Admin). Every invoice is paid or none is.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body BulkPaymentRequest true "Bulk payment"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments/bulk [post]
func (h *PaymentHandler) SubmitBulk(c *gin.Context) {
	var req BulkPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	payments, err := h.paymentService.SubmitBulk(c.Request.Context(), services.BulkSubmitInput{
		GuardianID: req.GuardianID,
		InvoiceIDs: req.InvoiceIDs,
		Method:     req.Method,
		Reference:  req.Reference,
		Notes:      req.Notes,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusCreated, gin.H{"payments": responses, "message": "Pagos registrados"})
}

// @Summary Approve Payment
// @Description Approve a payment awaiting review (Admin). The invoice becomes paid.
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/approve [post]
func (h *PaymentHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Approve(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago aprobado"})
}

// @Summary Reject Payment
// @Description Reject a payment awaiting review (Admin). The invoice returns to pending, or overdue if past due.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param body body RejectPaymentRequest false "Rejection reason"
// @Success 200 {object} models.PaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	var req RejectPaymentRequest
	if err := bindOptional(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	payment, err := h.paymentService.Reject(c.Request.Context(), id, req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago rechazado"})
}

// @Summary Download Proof
// @Description Download the proof attached to a payment
// @Tags Payments
// @Produce application/octet-stream
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file "proof"
// @Security BearerAuth
// @Router /payments/{payment_id}/proof [get]
func (h *PaymentHandler) DownloadProof(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	path, err := h.paymentService.ProofPath(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}

func optionalForm(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil
	}
	return &v
}
