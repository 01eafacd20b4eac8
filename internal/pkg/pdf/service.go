// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/reports"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateStockReport renders the stock position report as a PDF
func (s *Service) GenerateStockReport(report *reports.StockReport) (*bytes.Buffer, error) {
	data := StockReportData{
		GeneratedAt: time.Now().Format("January 2, 2006 15:04"),
		CompanyName: s.config.App.CompanyName,
		Report:      report,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data StockReportData) (string, error) {
	tmpl := template.Must(template.New("stock_report").Parse(stockReportTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// StockReportData represents the data passed to the stock report template
type StockReportData struct {
	GeneratedAt string               `json:"generated_at"`
	CompanyName string               `json:"company_name"`
	Report      *reports.StockReport `json:"report"`
}

// Stock report HTML template
const stockReportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Stock Report</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .report-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .summary {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
        }
        .summary-box {
            flex: 1;
            margin-right: 15px;
            padding: 12px;
            border: 1px solid #ddd;
            border-radius: 4px;
            text-align: center;
        }
        .summary-box .value {
            font-size: 22px;
            font-weight: bold;
        }
        .summary-box .label {
            font-size: 12px;
            color: #666;
            text-transform: uppercase;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 10px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .num-col {
            text-align: right;
            width: 90px;
        }
        .status-badge {
            display: inline-block;
            padding: 3px 8px;
            border-radius: 4px;
            font-size: 11px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-ok {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-low {
            background-color: #fef3c7;
            color: #92400e;
        }
        .status-out {
            background-color: #fee2e2;
            color: #991b1b;
        }
        .partial-notice {
            margin-bottom: 20px;
            padding: 10px;
            background-color: #fef3c7;
            border: 1px solid #fcd34d;
            border-radius: 4px;
            font-size: 12px;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.CompanyName}}</h1>
        </div>
        <div style="text-align: right;">
            <div class="report-title">STOCK REPORT</div>
            <p><strong>Generated:</strong> {{.GeneratedAt}}</p>
        </div>
    </div>

    {{if .Report.Partial}}
    <div class="partial-notice">
        Some report sections were unavailable when this document was generated:
        {{range .Report.Unavailable}}{{.}} {{end}}
    </div>
    {{end}}

    <div class="summary">
        <div class="summary-box">
            <div class="value">{{.Report.InStock}}</div>
            <div class="label">In Stock</div>
        </div>
        <div class="summary-box">
            <div class="value">{{.Report.LowStock}}</div>
            <div class="label">Low Stock</div>
        </div>
        <div class="summary-box">
            <div class="value">{{.Report.OutOfStock}}</div>
            <div class="label">Out of Stock</div>
        </div>
        <div class="summary-box">
            <div class="value">{{.Report.TotalValue}}</div>
            <div class="label">Total Value</div>
        </div>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Product</th>
                <th>SKU</th>
                <th class="num-col">Balance</th>
                <th class="num-col">Reorder At</th>
                <th class="num-col">Unit Price</th>
                <th class="num-col">Valuation</th>
                <th>Status</th>
            </tr>
        </thead>
        <tbody>
            {{range .Report.Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.SKU}}</td>
                <td class="num-col">{{.Balance}}</td>
                <td class="num-col">{{.ReorderLevel}}</td>
                <td class="num-col">{{.UnitPrice}}</td>
                <td class="num-col">{{.Valuation}}</td>
                <td><span class="status-badge status-{{.Status}}">{{.Status}}</span></td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="footer">
        <p>Balances are derived from the stock ledger at generation time.</p>
    </div>
</body>
</html>
`
