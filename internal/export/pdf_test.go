package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/backend/internal/domain"
)

func closedSession() domain.CashSession {
	opened := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	closed := opened.Add(11 * time.Hour)
	return domain.CashSession{
		OpenedAt: &opened,
		ClosedAt: &closed,
		Totals: domain.CashTotals{
			Cash:       decimal.RequireFromString("120.50"),
			CreditCard: decimal.RequireFromString("80"),
			DebitCard:  decimal.Zero,
			Pix:        decimal.RequireFromString("42.10"),
		},
		OrderCount: 9,
	}
}

func TestExportCashReportWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := NewPDFExporter(dir).ExportCashReport(closedSession())
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "relatorio-caixa-"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestWriteCashReportStreamsPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCashReport(&buf, closedSession()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteCashReportWithoutTimestamps(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCashReport(&buf, domain.CashSession{}))
	assert.NotZero(t, buf.Len())
}

func TestFileNameSeparatesClosesWithinOneSecond(t *testing.T) {
	first := closedSession()
	second := closedSession()
	later := second.ClosedAt.Add(250 * time.Millisecond)
	second.ClosedAt = &later

	assert.NotEqual(t, FileName(first), FileName(second))
	assert.True(t, strings.HasSuffix(FileName(second), ".250.pdf"))
}
