// internal/domain/reports/service.go
package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// Service handles read-side reporting. Every number it returns is derived
// from the ledger at call time; the service owns no state of its own.
//
// A section that fails to load contributes its zero value and is named in the
// response's Unavailable list with Partial set, so dashboards keep rendering
// while callers can still tell "empty" from "failed".
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new reports service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// LowStockItem is one product at or below its reorder level
type LowStockItem struct {
	ProductID      uint                `json:"product_id"`
	Name           string              `json:"name"`
	SKU            string              `json:"sku"`
	Balance        int                 `json:"balance"`
	ReorderLevel   int                 `json:"reorder_level"`
	SuggestedOrder int                 `json:"suggested_order"`
	Status         catalog.StockStatus `json:"status"`
}

// LowStockReport lists every active product needing reorder
type LowStockReport struct {
	Items       []LowStockItem `json:"items"`
	Partial     bool           `json:"partial"`
	Unavailable []string       `json:"unavailable,omitempty"`
}

// WarehouseBalance is a product's balance within one warehouse
type WarehouseBalance struct {
	WarehouseID   uint   `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	WarehouseCode string `json:"warehouse_code"`
	Balance       int    `json:"balance"`
}

// StockReportItem is one product's derived position
type StockReportItem struct {
	ProductID    uint                `json:"product_id"`
	Name         string              `json:"name"`
	SKU          string              `json:"sku"`
	ReorderLevel int                 `json:"reorder_level"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	Balance      int                 `json:"balance"`
	Valuation    decimal.Decimal     `json:"valuation"`
	Status       catalog.StockStatus `json:"status"`
	Warehouses   []WarehouseBalance  `json:"warehouses,omitempty"`
}

// StockReport is the full stock position with summary counts
type StockReport struct {
	Items       []StockReportItem `json:"items"`
	OutOfStock  int               `json:"out_of_stock"`
	LowStock    int               `json:"low_stock"`
	InStock     int               `json:"in_stock"`
	TotalValue  decimal.Decimal   `json:"total_value"`
	Partial     bool              `json:"partial"`
	Unavailable []string          `json:"unavailable,omitempty"`
}

// WarehouseValuation is one warehouse's total stock value
type WarehouseValuation struct {
	WarehouseID   uint            `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	WarehouseCode string          `json:"warehouse_code"`
	Value         decimal.Decimal `json:"value"`
}

// ValuationReport sums balance x unit price per warehouse
type ValuationReport struct {
	Warehouses  []WarehouseValuation `json:"warehouses"`
	TotalValue  decimal.Decimal      `json:"total_value"`
	Partial     bool                 `json:"partial"`
	Unavailable []string             `json:"unavailable,omitempty"`
}

// MonthlyActivityItem is one product's movement inside the current month
type MonthlyActivityItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	TotalIn   int    `json:"total_in"`
	TotalOut  int    `json:"total_out"`
	Volume    int    `json:"volume"`
}

// MonthlyReport ranks products by combined in+out volume for the calendar
// month containing today
type MonthlyReport struct {
	Month       string                `json:"month"`
	Items       []MonthlyActivityItem `json:"items"`
	Partial     bool                  `json:"partial"`
	Unavailable []string              `json:"unavailable,omitempty"`
}

// Dashboard aggregates the landing-page statistics
type Dashboard struct {
	TotalProducts   int64             `json:"total_products"`
	TotalCategories int64             `json:"total_categories"`
	TotalWarehouses int64             `json:"total_warehouses"`
	TodayStockIn    int64             `json:"today_stock_in"`
	TodayStockOut   int64             `json:"today_stock_out"`
	LowStock        []LowStockItem    `json:"low_stock"`
	RecentStockIns  []ledger.StockIn  `json:"recent_stock_ins"`
	RecentStockOuts []ledger.StockOut `json:"recent_stock_outs"`
	Partial         bool              `json:"partial"`
	Unavailable     []string          `json:"unavailable,omitempty"`
}

// productPosition is the scan target for the per-product balance query
type productPosition struct {
	ID           uint
	Name         string
	SKU          string
	ReorderLevel int
	UnitPrice    decimal.Decimal
	IsActive     bool
	Balance      int64
}

// GetLowStockReport returns every active product whose total balance is at or
// below its reorder level, with a suggested reorder quantity.
func (s *Service) GetLowStockReport() *LowStockReport {
	report := &LowStockReport{Items: []LowStockItem{}}

	positions, err := s.productPositions(true)
	if err != nil {
		s.fail(&report.Partial, &report.Unavailable, "low_stock", err)
		return report
	}

	for _, pos := range positions {
		if int(pos.Balance) > pos.ReorderLevel {
			continue
		}
		product := catalog.Product{ReorderLevel: pos.ReorderLevel}
		balance := int(pos.Balance)
		report.Items = append(report.Items, LowStockItem{
			ProductID:      pos.ID,
			Name:           pos.Name,
			SKU:            pos.SKU,
			Balance:        balance,
			ReorderLevel:   pos.ReorderLevel,
			SuggestedOrder: product.SuggestedReorderQuantity(balance),
			Status:         product.StatusFor(balance),
		})
	}

	return report
}

// GetStockReport returns per-product balances, valuations, a per-warehouse
// breakdown and out/low/in summary counts.
func (s *Service) GetStockReport() *StockReport {
	report := &StockReport{Items: []StockReportItem{}, TotalValue: decimal.Zero}

	positions, err := s.productPositions(false)
	if err != nil {
		s.fail(&report.Partial, &report.Unavailable, "stock_positions", err)
		return report
	}

	breakdown, err := s.warehouseBreakdown()
	if err != nil {
		s.fail(&report.Partial, &report.Unavailable, "warehouse_breakdown", err)
		breakdown = map[uint][]WarehouseBalance{}
	}

	for _, pos := range positions {
		product := catalog.Product{ReorderLevel: pos.ReorderLevel, UnitPrice: pos.UnitPrice}
		balance := int(pos.Balance)
		status := product.StatusFor(balance)
		valuation := product.Valuation(balance)

		switch status {
		case catalog.StockStatusOut:
			report.OutOfStock++
		case catalog.StockStatusLow:
			report.LowStock++
		default:
			report.InStock++
		}

		report.TotalValue = report.TotalValue.Add(valuation)
		report.Items = append(report.Items, StockReportItem{
			ProductID:    pos.ID,
			Name:         pos.Name,
			SKU:          pos.SKU,
			ReorderLevel: pos.ReorderLevel,
			UnitPrice:    pos.UnitPrice,
			Balance:      balance,
			Valuation:    valuation,
			Status:       status,
			Warehouses:   breakdown[pos.ID],
		})
	}

	return report
}

// GetValuationReport returns total stock value per warehouse
func (s *Service) GetValuationReport() *ValuationReport {
	report := &ValuationReport{Warehouses: []WarehouseValuation{}, TotalValue: decimal.Zero}

	rows, err := s.db.Raw(`
		SELECT
			w.id,
			w.name,
			w.code,
			COALESCE(SUM(pb.balance * p.unit_price), 0) AS value
		FROM warehouses w
		LEFT JOIN (
			SELECT warehouse_id, product_id, SUM(qty) AS balance
			FROM (
				SELECT warehouse_id, product_id, quantity AS qty FROM stock_ins
				UNION ALL
				SELECT warehouse_id, product_id, -quantity FROM stock_outs
			) movements
			GROUP BY warehouse_id, product_id
		) pb ON pb.warehouse_id = w.id
		LEFT JOIN products p ON p.id = pb.product_id AND p.deleted_at IS NULL
		WHERE w.deleted_at IS NULL
		GROUP BY w.id, w.name, w.code
		ORDER BY w.code
	`).Rows()

	if err != nil {
		s.fail(&report.Partial, &report.Unavailable, "warehouse_valuation", err)
		return report
	}
	defer rows.Close()

	for rows.Next() {
		var item WarehouseValuation
		if err := rows.Scan(&item.WarehouseID, &item.WarehouseName, &item.WarehouseCode, &item.Value); err != nil {
			s.fail(&report.Partial, &report.Unavailable, "warehouse_valuation", err)
			break
		}
		report.Warehouses = append(report.Warehouses, item)
		report.TotalValue = report.TotalValue.Add(item.Value)
	}

	return report
}

// GetMonthlyReport sums per-product movement inside the calendar month
// containing now, ranked by in+out volume descending. Ties keep product-id
// encounter order via the stable sort.
func (s *Service) GetMonthlyReport(now time.Time) *MonthlyReport {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	report := &MonthlyReport{
		Month: monthStart.Format("January 2006"),
		Items: []MonthlyActivityItem{},
	}

	rows, err := s.db.Raw(`
		SELECT
			p.id,
			p.name,
			p.sku,
			COALESCE(i.total, 0) AS total_in,
			COALESCE(o.total, 0) AS total_out
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total
			FROM stock_ins
			WHERE date_received >= ? AND date_received < ?
			GROUP BY product_id
		) i ON i.product_id = p.id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total
			FROM stock_outs
			WHERE date_issued >= ? AND date_issued < ?
			GROUP BY product_id
		) o ON o.product_id = p.id
		WHERE p.deleted_at IS NULL AND (i.total IS NOT NULL OR o.total IS NOT NULL)
		ORDER BY p.id
	`, monthStart, monthEnd, monthStart, monthEnd).Rows()

	if err != nil {
		s.fail(&report.Partial, &report.Unavailable, "monthly_activity", err)
		return report
	}
	defer rows.Close()

	for rows.Next() {
		var item MonthlyActivityItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.SKU, &item.TotalIn, &item.TotalOut); err != nil {
			s.fail(&report.Partial, &report.Unavailable, "monthly_activity", err)
			break
		}
		item.Volume = item.TotalIn + item.TotalOut
		report.Items = append(report.Items, item)
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Volume > report.Items[j].Volume
	})

	return report
}

// GetDashboard assembles the landing-page statistics
func (s *Service) GetDashboard() *Dashboard {
	dashboard := &Dashboard{
		LowStock:        []LowStockItem{},
		RecentStockIns:  []ledger.StockIn{},
		RecentStockOuts: []ledger.StockOut{},
	}

	if err := s.db.Model(&catalog.Product{}).Count(&dashboard.TotalProducts).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "total_products", err)
	}
	if err := s.db.Model(&catalog.Category{}).Count(&dashboard.TotalCategories).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "total_categories", err)
	}
	if err := s.db.Raw("SELECT COUNT(*) FROM warehouses WHERE deleted_at IS NULL").Scan(&dashboard.TotalWarehouses).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "total_warehouses", err)
	}

	if err := s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM stock_ins WHERE DATE(date_received) = CURRENT_DATE").Scan(&dashboard.TodayStockIn).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "today_stock_in", err)
	}
	if err := s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM stock_outs WHERE DATE(date_issued) = CURRENT_DATE").Scan(&dashboard.TodayStockOut).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "today_stock_out", err)
	}

	lowStock := s.GetLowStockReport()
	if lowStock.Partial {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "low_stock", fmt.Errorf("low stock section unavailable"))
	} else {
		items := lowStock.Items
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Balance < items[j].Balance
		})
		if len(items) > 10 {
			items = items[:10]
		}
		dashboard.LowStock = items
	}

	if err := s.db.Preload("Product").Preload("Warehouse").
		Order("date_received DESC").Limit(5).Find(&dashboard.RecentStockIns).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "recent_stock_ins", err)
	}
	if err := s.db.Preload("Product").Preload("Warehouse").
		Order("date_issued DESC").Limit(5).Find(&dashboard.RecentStockOuts).Error; err != nil {
		s.fail(&dashboard.Partial, &dashboard.Unavailable, "recent_stock_outs", err)
	}

	return dashboard
}

// productPositions loads every product with its ledger-derived total balance,
// ordered by product id
func (s *Service) productPositions(activeOnly bool) ([]productPosition, error) {
	query := `
		SELECT
			p.id,
			p.name,
			p.sku,
			p.reorder_level,
			p.unit_price,
			p.is_active,
			COALESCE(i.total, 0) - COALESCE(o.total, 0) AS balance
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total FROM stock_ins GROUP BY product_id
		) i ON i.product_id = p.id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total FROM stock_outs GROUP BY product_id
		) o ON o.product_id = p.id
		WHERE p.deleted_at IS NULL`
	if activeOnly {
		query += " AND p.is_active = true"
	}
	query += " ORDER BY p.id"

	rows, err := s.db.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to load product positions: %w", err)
	}
	defer rows.Close()

	var positions []productPosition
	for rows.Next() {
		var pos productPosition
		if err := rows.Scan(&pos.ID, &pos.Name, &pos.SKU, &pos.ReorderLevel, &pos.UnitPrice, &pos.IsActive, &pos.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan product position: %w", err)
		}
		positions = append(positions, pos)
	}

	return positions, nil
}

// warehouseBreakdown maps product id to its non-zero per-warehouse balances
func (s *Service) warehouseBreakdown() (map[uint][]WarehouseBalance, error) {
	rows, err := s.db.Raw(`
		SELECT
			movements.product_id,
			w.id,
			w.name,
			w.code,
			SUM(movements.qty) AS balance
		FROM (
			SELECT product_id, warehouse_id, quantity AS qty FROM stock_ins
			UNION ALL
			SELECT product_id, warehouse_id, -quantity FROM stock_outs
		) movements
		JOIN warehouses w ON w.id = movements.warehouse_id
		GROUP BY movements.product_id, w.id, w.name, w.code
		ORDER BY movements.product_id, w.code
	`).Rows()

	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[uint][]WarehouseBalance)
	for rows.Next() {
		var productID uint
		var item WarehouseBalance
		if err := rows.Scan(&productID, &item.WarehouseID, &item.WarehouseName, &item.WarehouseCode, &item.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse balance: %w", err)
		}
		breakdown[productID] = append(breakdown[productID], item)
	}

	return breakdown, nil
}

// fail records a section failure on a report instead of propagating it
func (s *Service) fail(partial *bool, unavailable *[]string, section string, err error) {
	s.log.WithFields(logrus.Fields{
		"section": section,
		"error":   err.Error(),
	}).Warn("report section unavailable")

	*partial = true
	*unavailable = append(*unavailable, section)
}
