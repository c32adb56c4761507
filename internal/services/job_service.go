package services

import (
	"context"

	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/pkg/logger"
)

type JobService struct {
	worker     *jobs.Worker
	billingSvc *BillingService
	ledgerSvc  *InvoiceService
}

func NewJobService(worker *jobs.Worker, billingSvc *BillingService, ledgerSvc *InvoiceService) *JobService {
	return &JobService{
		worker:     worker,
		billingSvc: billingSvc,
		ledgerSvc:  ledgerSvc,
	}
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	return map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
	}
}

// GenerateCurrentPeriod bills every recurring fee for the current period
func (s *JobService) GenerateCurrentPeriod(ctx context.Context) error {
	results, err := s.billingSvc.GenerateRecurring(ctx, "", SystemActor)
	created, skipped := 0, 0
	for _, r := range results {
		created += r.Created
		skipped += r.Skipped
	}
	logger.Info("scheduled invoice generation", "fees", len(results), "created", created, "skipped", skipped)
	return err
}

// SweepOverdue materializes overdue invoices
func (s *JobService) SweepOverdue(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep is SweepOverdue returning how many invoices changed
func (s *JobService) Sweep(ctx context.Context) (int64, error) {
	return s.ledgerSvc.SweepOverdue(ctx)
}

// EnqueueGeneration runs GenerateCurrentPeriod on the worker pool
func (s *JobService) EnqueueGeneration() {
	s.worker.Enqueue(s.GenerateCurrentPeriod)
}
