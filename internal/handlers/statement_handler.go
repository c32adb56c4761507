package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/clubfin-api/internal/middleware"
	"github.com/sjperalta/clubfin-api/internal/services"
)

type StatementHandler struct {
	reportService *services.ReportService
}

func NewStatementHandler(reportService *services.ReportService) *StatementHandler {
	return &StatementHandler{reportService: reportService}
}

// @Summary Guardian Statement
// @Description Statement of account of any guardian as html or pdf (Admin)
// @Tags Reports
// @Produce text/html
// @Produce application/pdf
// @Param guardian_id path int true "Guardian ID"
// @Param format query string false "html or pdf" default(html)
// @Success 200 {file} file "statement"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /guardians/{guardian_id}/statement [get]
func (h *StatementHandler) Show(c *gin.Context) {
	guardianID, ok := paramID(c, "guardian_id")
	if !ok {
		return
	}
	h.render(c, guardianID)
}

// @Summary My Statement
// @Description Statement of account of the authenticated guardian as html or pdf
// @Tags Reports
// @Produce text/html
// @Produce application/pdf
// @Param format query string false "html or pdf" default(html)
// @Success 200 {file} file "statement"
// @Security BearerAuth
// @Router /me/statement [get]
func (h *StatementHandler) Mine(c *gin.Context) {
	h.render(c, middleware.GetUserID(c))
}

func (h *StatementHandler) render(c *gin.Context, guardianID uint) {
	switch c.DefaultQuery("format", "html") {
	case "pdf":
		buf, err := h.reportService.GuardianStatementPDF(c.Request.Context(), guardianID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"estado_cuenta_%d.pdf\"", guardianID))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	case "html":
		data, err := h.reportService.BuildStatement(c.Request.Context(), guardianID)
		if err != nil {
			respondError(c, err)
			return
		}
		html, err := h.reportService.RenderStatementHTML(data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato inválido"})
	}
}
