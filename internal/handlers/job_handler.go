package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/clubfin-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// @Summary Run invoice generation
// @Description Queue a generation run of every recurring fee for the current period (Admin)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Router /jobs/generate [post]
func (h *JobHandler) Generate(c *gin.Context) {
	h.jobService.EnqueueGeneration()
	c.JSON(http.StatusAccepted, gin.H{"message": "Generación de facturas en cola"})
}

// @Summary Run overdue sweep
// @Description Mark every pending invoice past its due date as overdue (Admin)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /invoices/sweep_overdue [post]
func (h *JobHandler) Sweep(c *gin.Context) {
	marked, err := h.jobService.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_overdue": marked})
}
