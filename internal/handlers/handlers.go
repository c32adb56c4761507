package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/clubfin-api/internal/middleware"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/services"
	"github.com/sjperalta/clubfin-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Fee       *FeeHandler
	Invoice   *InvoiceHandler
	Payment   *PaymentHandler
	Finance   *FinanceHandler
	Statement *StatementHandler
	Audit     *AuditHandler
	Job       *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(),
		Fee:       NewFeeHandler(svcs.Fee, svcs.Billing),
		Invoice:   NewInvoiceHandler(svcs.Invoice),
		Payment:   NewPaymentHandler(svcs.Payment, svcs.Invoice),
		Finance:   NewFinanceHandler(svcs.Finance, svcs.Export),
		Statement: NewStatementHandler(svcs.Report),
		Audit:     NewAuditHandler(svcs.Audit),
		Job:       NewJobHandler(svcs.Job),
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrDuplicateSubmission),
		errors.Is(err, services.ErrFeeInUse):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrMissingProof),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrInvalidMethod),
		errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Error interno del servidor"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actor builds the audit actor for the authenticated request
func actor(c *gin.Context) services.Actor {
	return services.UserActor(middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
}

// paramID parses a numeric path parameter, answering 400 when it is not one
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return uint(id), true
}

// listQuery reads page, per_page, search, sort and the given filter keys from the query string
func listQuery(c *gin.Context, filters ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 100 {
		query.PerPage = 20
	}
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	for _, key := range filters {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}
