package services

import (
	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Fee     *FeeService
	Billing *BillingService
	Invoice *InvoiceService
	Payment *PaymentService
	Finance *FinanceService
	Export  *ExportService
	Report  *ReportService
	Audit   *AuditService
	Job     *JobService
}

// NewServices creates all service instances. roster is the read-only player/guardian lookup.
func NewServices(repos *repository.Repositories, roster RosterProvider, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	return NewServicesWithClock(repos, roster, worker, storage, cfg, db, NewClock(cfg.Location))
}

// NewServicesWithClock is NewServices with an explicit clock
func NewServicesWithClock(repos *repository.Repositories, roster RosterProvider, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB, clock Clock) *Services {
	auditSvc := NewAuditService(db)
	billingSvc := NewBillingService(repos.Fee, repos.Invoice, roster, auditSvc, clock, cfg.Billing.DueDay)
	ledgerSvc := NewInvoiceService(repos.Invoice, billingSvc, auditSvc, clock)
	financeSvc := NewFinanceService(repos, ledgerSvc, auditSvc)

	return &Services{
		Fee:     NewFeeService(repos.Fee, repos.Invoice, repos.Roster, auditSvc),
		Billing: billingSvc,
		Invoice: ledgerSvc,
		Payment: NewPaymentService(repos, ledgerSvc, auditSvc, storage),
		Finance: financeSvc,
		Export:  NewExportService(financeSvc),
		Report:  NewReportService(repos.User, ledgerSvc),
		Audit:   auditSvc,
		Job:     NewJobService(worker, billingSvc, ledgerSvc),
	}
}
