package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// FinanceReport is the data behind every export format
type FinanceReport struct {
	Year    int
	Summary *FinanceSummary
	Months  []MonthlyFlow
}

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

var exportContentTypes = map[string]string{
	ExportFormatCSV:  "text/csv",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportFormatPDF:  "application/pdf",
}

type ExportService struct {
	financeSvc *FinanceService
}

func NewExportService(financeSvc *FinanceService) *ExportService {
	return &ExportService{financeSvc: financeSvc}
}

// Export renders the finance report for year. It returns the file bytes, a file name and a content type.
func (s *ExportService) Export(ctx context.Context, format string, year int) ([]byte, string, string, error) {
	format = strings.ToLower(format)
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, "", "", fmt.Errorf("%w: formato %q", ErrInvalidInput, format)
	}

	report, err := s.build(ctx, year)
	if err != nil {
		return nil, "", "", err
	}

	var data []byte
	switch format {
	case ExportFormatCSV:
		data, err = s.ExportCSV(report)
	case ExportFormatXLSX:
		data, err = s.ExportXLSX(report)
	default:
		data, err = s.ExportPDF(report)
	}
	if err != nil {
		return nil, "", "", err
	}

	filename := fmt.Sprintf("finance_report_%d_%s.%s", year, report.Summary.GeneratedAt.Format("2006-01-02"), format)
	return data, filename, contentType, nil
}

func (s *ExportService) build(ctx context.Context, year int) (*FinanceReport, error) {
	summary, err := s.financeSvc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	months, err := s.financeSvc.MonthlyCashFlow(ctx, year)
	if err != nil {
		return nil, err
	}
	return &FinanceReport{Year: year, Summary: summary, Months: months}, nil
}

func summaryRows(summary *FinanceSummary) [][2]string {
	return [][2]string{
		{"Total Pagado", summary.TotalPaid.StringFixed(2)},
		{"Total Pendiente", summary.TotalPending.StringFixed(2)},
		{"Total Vencido", summary.TotalOverdue.StringFixed(2)},
		{"Total en Revisión", summary.TotalInReview.StringFixed(2)},
		{"Por Cobrar", summary.TotalOutstanding.StringFixed(2)},
		{"Pagos Completados", summary.CompletedPayments.StringFixed(2)},
		{"Ingresos", summary.Income.StringFixed(2)},
		{"Egresos", summary.Expense.StringFixed(2)},
		{"Balance", summary.Balance.StringFixed(2)},
	}
}

func (s *ExportService) ExportCSV(report *FinanceReport) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Reporte Financiero", report.Summary.GeneratedAt.Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})

	_ = writer.Write([]string{"Resumen General"})
	_ = writer.Write([]string{"Métrica", "Valor"})
	for _, row := range summaryRows(report.Summary) {
		_ = writer.Write([]string{row[0], row[1]})
	}
	_ = writer.Write([]string{""})

	_ = writer.Write([]string{fmt.Sprintf("Flujo Mensual %d", report.Year)})
	_ = writer.Write([]string{"Mes", "Cuotas", "Ingresos", "Egresos", "Neto"})
	for _, m := range report.Months {
		_ = writer.Write([]string{m.Month, m.FeeIncome.StringFixed(2), m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Net.StringFixed(2)})
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *ExportService) ExportXLSX(report *FinanceReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Finanzas"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Reporte Financiero")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	_ = f.SetCellValue(sheet, "A3", "Métrica")
	_ = f.SetCellValue(sheet, "B3", "Valor")
	row := 4
	for _, r := range summaryRows(report.Summary) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r[0])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r[1])
		row++
	}

	row++
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Flujo Mensual %d", report.Year))
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
	row++
	for col, title := range []string{"Mes", "Cuotas", "Ingresos", "Egresos", "Neto"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for _, m := range report.Months {
		row++
		values := []interface{}{m.Month, m.FeeIncome.InexactFloat64(), m.Income.InexactFloat64(), m.Expense.InexactFloat64(), m.Net.InexactFloat64()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) ExportPDF(report *FinanceReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reporte Financiero")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen General")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, row := range summaryRows(report.Summary) {
		pdf.Cell(60, 8, tr(row[0]+":"))
		pdf.Cell(40, 8, row[1])
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Flujo Mensual %d", report.Year))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	for _, title := range []string{"Mes", "Cuotas", "Ingresos", "Egresos", "Neto"} {
		pdf.CellFormat(36, 7, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, m := range report.Months {
		pdf.CellFormat(36, 7, m.Month, "1", 0, "L", false, 0, "")
		for _, v := range []string{m.FeeIncome.StringFixed(2), m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Net.StringFixed(2)} {
			pdf.CellFormat(36, 7, v, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
