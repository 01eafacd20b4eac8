// internal/interfaces/http/handlers/reports.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/reports"
	"github.com/your-org/stockledger-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// ReportsHandler handles reporting endpoints
type ReportsHandler struct {
	reportsService *reports.Service
	pdfService     *pdf.Service
	config         *config.Config
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *ReportsHandler {
	return &ReportsHandler{
		reportsService: reports.NewService(db, cfg, log),
		pdfService:     pdf.NewService(cfg),
		config:         cfg,
	}
}

// GetLowStockReport handles GET /reports/low-stock
func (h *ReportsHandler) GetLowStockReport(c *gin.Context) {
	report := h.reportsService.GetLowStockReport()

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock report generated successfully",
		"data":    report,
	})
}

// GetStockReport handles GET /reports/stock
func (h *ReportsHandler) GetStockReport(c *gin.Context) {
	report := h.reportsService.GetStockReport()

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock report generated successfully",
		"data":    report,
	})
}

// GetValuationReport handles GET /reports/valuation
func (h *ReportsHandler) GetValuationReport(c *gin.Context) {
	report := h.reportsService.GetValuationReport()

	c.JSON(http.StatusOK, gin.H{
		"message": "Valuation report generated successfully",
		"data":    report,
	})
}

// GetMonthlyReport handles GET /reports/monthly
func (h *ReportsHandler) GetMonthlyReport(c *gin.Context) {
	report := h.reportsService.GetMonthlyReport(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"message": "Monthly report generated successfully",
		"data":    report,
	})
}

// GetDashboard handles GET /reports/dashboard
func (h *ReportsHandler) GetDashboard(c *gin.Context) {
	dashboard := h.reportsService.GetDashboard()

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard generated successfully",
		"data":    dashboard,
	})
}

// GetStockReportPDF handles GET /reports/stock/pdf
func (h *ReportsHandler) GetStockReportPDF(c *gin.Context) {
	report := h.reportsService.GetStockReport()

	buf, err := h.pdfService.GenerateStockReport(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate PDF",
		})
		return
	}

	filename := fmt.Sprintf("stock-report-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
