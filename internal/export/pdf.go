package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"comanda/backend/internal/domain"
)

const fileStampLayout = "20060102-150405.000"

// PDFExporter writes the end-of-day cash report as a printable PDF.
type PDFExporter struct {
	dir string
}

func NewPDFExporter(dir string) *PDFExporter {
	if dir == "" {
		dir = "."
	}
	return &PDFExporter{dir: dir}
}

// FileName is relatorio-caixa-<close time>.pdf, down to the millisecond.
func FileName(session domain.CashSession) string {
	at := time.Now()
	if session.ClosedAt != nil {
		at = *session.ClosedAt
	}
	return fmt.Sprintf("relatorio-caixa-%s.pdf", at.Local().Format(fileStampLayout))
}

// ExportCashReport writes the report under the export directory and returns the
// file path.
func (e *PDFExporter) ExportCashReport(session domain.CashSession) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create export dir: %w", err)
	}

	filePath := filepath.Join(e.dir, FileName(session))
	pdf := render(session)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// WriteCashReport streams the same document to w.
func WriteCashReport(w io.Writer, session domain.CashSession) error {
	pdf := render(session)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func render(session domain.CashSession) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40
	labelW := contentW * 0.65
	valueW := contentW - labelW

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 10, tr("Relatório do Dia"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label string, value string) {
		pdf.CellFormat(labelW, 8, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 8, tr(value), "", 1, "R", false, 0, "")
	}

	line("Data:", formatDate(session.OpenedAt))
	line("Horário de Abertura:", formatClock(session.OpenedAt))
	line("Horário de Fechamento:", formatClock(session.ClosedAt))
	pdf.Ln(2)
	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(2)

	line("Total em Dinheiro:", currency(session.Totals.Cash))
	line("Total em Cartão de Crédito:", currency(session.Totals.CreditCard))
	line("Total em Cartão de Débito:", currency(session.Totals.DebitCard))
	line("Total em Pix:", currency(session.Totals.Pix))
	line("Total de Comandas:", fmt.Sprintf("%d", session.OrderCount))

	pdf.Ln(2)
	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 13)
	line("Total Geral:", currency(session.GrandTotal()))

	return pdf
}

func currency(value decimal.Decimal) string {
	return "R$ " + domain.FormatMoney(value)
}

func formatDate(at *time.Time) string {
	if at == nil {
		return "-"
	}
	return at.Local().Format("02/01/2006")
}

func formatClock(at *time.Time) string {
	if at == nil {
		return "-"
	}
	return at.Local().Format("15:04:05")
}
