package invoice

import (
	"bytes"
	"html/template"
)

// printTemplate is fully self contained: inline styles only, plus the
// page directives the platform print facility needs (fixed A4 page,
// no row splitting across pages, backgrounds preserved). Text is never
// truncated here; cells wrap naturally.
const printTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.InvoiceNumber}}</title>
  <style>
    @page {
      size: A4;
      margin: 18mm 14mm;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: "Helvetica Neue", Arial, sans-serif;
      font-size: 13px;
      color: #1f2937;
      background: #ffffff;
      -webkit-print-color-adjust: exact;
      print-color-adjust: exact;
    }
    .band {
      background: #1e3a5f;
      color: #ffffff;
      padding: 18px 24px;
    }
    .band h1 {
      margin: 0;
      font-size: 22px;
      letter-spacing: 0.06em;
    }
    .band .number { font-size: 13px; opacity: 0.85; }
    .columns {
      display: flex;
      justify-content: space-between;
      padding: 20px 24px;
      gap: 24px;
    }
    .columns .label {
      text-transform: uppercase;
      font-size: 10px;
      letter-spacing: 0.05em;
      color: #6b7280;
      margin-bottom: 4px;
    }
    table.items {
      width: calc(100% - 48px);
      margin: 0 24px;
      border-collapse: collapse;
    }
    table.items th, table.items td {
      border: 1px solid #d1d5db;
      padding: 8px 10px;
      text-align: left;
    }
    table.items th {
      background: #eef2f7;
      text-transform: uppercase;
      font-size: 10px;
      letter-spacing: 0.05em;
      color: #374151;
    }
    table.items td.num, table.items th.num { text-align: right; }
    table.items tr { page-break-inside: avoid; }
    .totals {
      width: 280px;
      margin: 16px 24px 0 auto;
    }
    .totals .row {
      display: flex;
      justify-content: space-between;
      padding: 4px 10px;
    }
    .totals .row.grand {
      border-top: 2px solid #1e3a5f;
      margin-top: 6px;
      padding-top: 8px;
      font-size: 15px;
      font-weight: bold;
    }
    .footer {
      margin-top: 32px;
      padding: 12px 24px;
      background: #eef2f7;
      font-size: 11px;
      color: #6b7280;
      page-break-inside: avoid;
    }
  </style>
</head>
<body>
  <div class="band">
    <h1>INVOICE</h1>
    <div class="number">{{.InvoiceNumber}} · issued {{.IssueDate}} · due {{.DueDate}}</div>
  </div>

  <div class="columns">
    <div>
      <div class="label">From</div>
      <div><strong>{{.Company.Name}}</strong></div>
      <div>{{.Company.Address}}</div>
      <div>{{.Company.Email}}</div>
      <div>{{.Company.Phone}}</div>
    </div>
    <div>
      <div class="label">Bill To</div>
      <div><strong>{{.BillTo.Name}}</strong></div>
      {{if .BillTo.Email}}<div>{{.BillTo.Email}}</div>{{end}}
      {{if .BillTo.Phone}}<div>{{.BillTo.Phone}}</div>{{end}}
      {{if .BillTo.Country}}<div>{{.BillTo.Country}}</div>{{end}}
    </div>
  </div>

  <table class="items">
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Travelers</th>
        <th>Duration</th>
        <th class="num">Unit Price</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Travelers}}</td>
        <td>{{.Duration}}</td>
        <td class="num">{{.UnitPrice}}</td>
        <td class="num">{{.Amount}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div class="row"><span>Subtotal</span><span>{{.Totals.Subtotal}}</span></div>
    <div class="row"><span>{{.Totals.DiscountLabel}}</span><span>{{.Totals.DiscountAmount}}</span></div>
    <div class="row grand"><span>Total</span><span>{{.Totals.Total}}</span></div>
  </div>

  <div class="footer">
    {{.Company.Name}} · booking {{.InvoiceNumber}} · status {{.Status}}
  </div>
</body>
</html>
`

// PrintRenderer produces the reflowable hypertext rendition of an
// invoice for browser-native printing.
type PrintRenderer struct {
	tpl *template.Template
}

func NewPrintRenderer() *PrintRenderer {
	return &PrintRenderer{
		tpl: template.Must(template.New("invoice").Parse(printTemplate)),
	}
}

// Render executes the template against a content model. No pricing is
// recomputed here; the model's strings are placed verbatim.
func (r *PrintRenderer) Render(cm *ContentModel) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, cm); err != nil {
		return "", err
	}
	return buf.String(), nil
}
