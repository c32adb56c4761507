package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/clubfin-api/internal/models"
	"github.com/sjperalta/clubfin-api/internal/repository"
)

//go:embed templates/*.html
var reportTemplates embed.FS

var statusLabels = map[string]string{
	models.InvoiceStatusPending:  "Pendiente",
	models.InvoiceStatusOverdue:  "Vencida",
	models.InvoiceStatusInReview: "En revisión",
	models.InvoiceStatusPaid:     "Pagada",
}

// StatementLine is one invoice row of a guardian statement
type StatementLine struct {
	InvoiceID uint
	Player    string
	Fee       string
	Period    string
	DueDate   string
	Status    string
	Overdue   bool
	Amount    string
}

// StatementData feeds the guardian statement template
type StatementData struct {
	GuardianName     string
	GuardianEmail    string
	Date             string
	Lines            []StatementLine
	TotalPaid        string
	TotalInReview    string
	TotalOutstanding string
}

type ReportService struct {
	userRepo  repository.UserRepository
	ledgerSvc *InvoiceService
}

func NewReportService(userRepo repository.UserRepository, ledgerSvc *InvoiceService) *ReportService {
	return &ReportService{
		userRepo:  userRepo,
		ledgerSvc: ledgerSvc,
	}
}

// BuildStatement collects every invoice of a guardian, with overdue already applied
func (s *ReportService) BuildStatement(ctx context.Context, guardianID uint) (*StatementData, error) {
	guardian, err := s.userRepo.FindByID(ctx, guardianID)
	if err != nil {
		return nil, notFound(err, "encargado")
	}

	query := repository.NewListQuery()
	query.PerPage = 0
	invoices, _, err := s.ledgerSvc.ListByGuardian(ctx, guardianID, query)
	if err != nil {
		return nil, err
	}

	paid, inReview, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	lines := make([]StatementLine, 0, len(invoices))
	for _, inv := range invoices {
		line := StatementLine{
			InvoiceID: inv.ID,
			Fee:       inv.FeeDefinition.Name,
			Period:    inv.BillingPeriod,
			DueDate:   inv.DueDate.Format("02/01/2006"),
			Status:    statusLabels[inv.Status],
			Overdue:   inv.Status == models.InvoiceStatusOverdue,
			Amount:    inv.Amount.StringFixed(2),
		}
		if inv.Player != nil {
			line.Player = inv.Player.FullName()
		}
		lines = append(lines, line)

		switch inv.Status {
		case models.InvoiceStatusPaid:
			paid = paid.Add(inv.Amount)
		case models.InvoiceStatusInReview:
			inReview = inReview.Add(inv.Amount)
		default:
			outstanding = outstanding.Add(inv.Amount)
		}
	}

	return &StatementData{
		GuardianName:     guardian.FullName,
		GuardianEmail:    guardian.Email,
		Date:             s.ledgerSvc.Today().Format("02/01/2006"),
		Lines:            lines,
		TotalPaid:        paid.StringFixed(2),
		TotalInReview:    inReview.StringFixed(2),
		TotalOutstanding: outstanding.StringFixed(2),
	}, nil
}

// RenderStatementHTML executes the statement template
func (s *ReportService) RenderStatementHTML(data *StatementData) ([]byte, error) {
	tmpl, err := template.ParseFS(reportTemplates, "templates/guardian_statement.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GuardianStatementPDF renders the statement of account of one guardian
func (s *ReportService) GuardianStatementPDF(ctx context.Context, guardianID uint) (*bytes.Buffer, error) {
	data, err := s.BuildStatement(ctx, guardianID)
	if err != nil {
		return nil, err
	}
	html, err := s.RenderStatementHTML(data)
	if err != nil {
		return nil, err
	}
	return s.generatePDF(html)
}

func (s *ReportService) generatePDF(html []byte) (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
