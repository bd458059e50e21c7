package httpapi

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"comanda/backend/internal/domain"
)

func reportToCSV(report domain.Report) string {
	lines := []string{
		"section,key,value",
		fmt.Sprintf("summary,entries,%d", len(report.Entries)),
		fmt.Sprintf("summary,total_paid,%s", domain.FormatMoney(report.TotalPaid)),
	}
	for _, payment := range report.ByPayment {
		lines = append(lines, fmt.Sprintf("payment,%s_entries,%d", payment.PaymentMethod, payment.Entries))
		lines = append(lines, fmt.Sprintf("payment,%s_total,%s", payment.PaymentMethod, domain.FormatMoney(payment.Total)))
	}
	for _, day := range report.ByDay {
		lines = append(lines, fmt.Sprintf("day,%s_entries,%d", day.Date, day.Entries))
		lines = append(lines, fmt.Sprintf("day,%s_total,%s", day.Date, domain.FormatMoney(day.Total)))
	}
	return strings.Join(lines, "\n") + "\n"
}

// reportHTMLTmpl escapes every field, method names included.
var reportHTMLTmpl = template.Must(template.New("payment-report").Funcs(template.FuncMap{
	"money": domain.FormatMoney,
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Relatório de Pagamentos</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>Relatório de Pagamentos</h2>
  <p>Lançamentos: {{len .Entries}} | Total: R$ {{money .TotalPaid}}</p>

  <h3>Por forma de pagamento</h3>
  <table>
    <thead><tr><th>Forma</th><th>Lançamentos</th><th>Total</th></tr></thead>
    <tbody>{{range .ByPayment}}<tr><td>{{.PaymentMethod}}</td><td style="text-align:right;">{{.Entries}}</td><td style="text-align:right;">R$ {{money .Total}}</td></tr>{{end}}</tbody>
  </table>

  <h3>Por dia</h3>
  <table>
    <thead><tr><th>Dia</th><th>Lançamentos</th><th>Total</th></tr></thead>
    <tbody>{{range .ByDay}}<tr><td>{{.Date}}</td><td style="text-align:right;">{{.Entries}}</td><td style="text-align:right;">R$ {{money .Total}}</td></tr>{{end}}</tbody>
  </table>
</body>
</html>
`))

func reportToPrintableHTML(report domain.Report) string {
	var buf bytes.Buffer
	if err := reportHTMLTmpl.Execute(&buf, report); err != nil {
		return "<!doctype html><html><body><p>Report rendering error.</p></body></html>"
	}
	return buf.String()
}
