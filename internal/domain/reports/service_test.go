package reports_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/ledger"
	"github.com/your-org/stockledger-backend/internal/domain/reports"
	"github.com/your-org/stockledger-backend/internal/domain/warehouse"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	_ = godotenv.Load("../../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	models := []interface{}{
		&catalog.Category{}, &catalog.Product{},
		&warehouse.Warehouse{},
		&ledger.StockIn{}, &ledger.StockOut{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("Failed to migrate test schema: %v", err)
		}
	}

	if err := db.Exec("TRUNCATE TABLE stock_ins, stock_outs, products, categories, warehouses RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return db
}

func newService(db *gorm.DB) *reports.Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return reports.NewService(db, &config.Config{}, log)
}

func seedProduct(t *testing.T, db *gorm.DB, sku, name string, reorderLevel int, price string, active bool) catalog.Product {
	t.Helper()
	product := catalog.Product{
		SKU:          sku,
		Name:         name,
		ReorderLevel: reorderLevel,
		UnitPrice:    decimal.RequireFromString(price),
		IsActive:     active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to seed product %s: %v", sku, err)
	}
	return product
}

func seedWarehouse(t *testing.T, db *gorm.DB, name, code string) warehouse.Warehouse {
	t.Helper()
	wh := warehouse.Warehouse{Name: name, Code: code, IsActive: true}
	if err := db.Create(&wh).Error; err != nil {
		t.Fatalf("Failed to seed warehouse %s: %v", code, err)
	}
	return wh
}

func seedStockIn(t *testing.T, db *gorm.DB, productID, warehouseID uint, qty int, ref string, at time.Time) {
	t.Helper()
	row := ledger.StockIn{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		Quantity:     qty,
		ReferenceNo:  ref,
		DateReceived: at,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("Failed to seed stock in %s: %v", ref, err)
	}
}

func seedStockOut(t *testing.T, db *gorm.DB, productID, warehouseID uint, qty int, ref string, at time.Time) {
	t.Helper()
	row := ledger.StockOut{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		ReferenceNo: ref,
		DateIssued:  at,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("Failed to seed stock out %s: %v", ref, err)
	}
}

func TestGetLowStockReport(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	wh := seedWarehouse(t, db, "Main", "WH001")
	now := time.Now()

	widget := seedProduct(t, db, "WID-001", "Widget", 10, "2.00", true)
	gadget := seedProduct(t, db, "GAD-001", "Gadget", 10, "3.00", true)
	dormant := seedProduct(t, db, "DOR-001", "Dormant", 10, "1.00", false)

	seedStockIn(t, db, widget.ID, wh.ID, 5, "PO-001", now)  // balance 5, at/below reorder
	seedStockIn(t, db, gadget.ID, wh.ID, 11, "PO-002", now) // balance 11, above reorder
	seedStockIn(t, db, dormant.ID, wh.ID, 1, "PO-003", now) // low, but inactive

	report := svc.GetLowStockReport()
	if report.Partial {
		t.Fatalf("Report unexpectedly partial: %v", report.Unavailable)
	}

	if len(report.Items) != 1 {
		t.Fatalf("Low stock items = %d, want 1", len(report.Items))
	}

	item := report.Items[0]
	if item.ProductID != widget.ID {
		t.Errorf("Low stock item product = %d, want %d", item.ProductID, widget.ID)
	}
	if item.Balance != 5 {
		t.Errorf("Low stock balance = %d, want 5", item.Balance)
	}
	if item.SuggestedOrder != 15 {
		t.Errorf("Suggested order = %d, want 15", item.SuggestedOrder)
	}
	if item.Status != catalog.StockStatusLow {
		t.Errorf("Status = %q, want %q", item.Status, catalog.StockStatusLow)
	}
}

func TestGetLowStockReport_BoundaryAtReorderLevel(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	wh := seedWarehouse(t, db, "Main", "WH001")

	exact := seedProduct(t, db, "EXA-001", "Exactly At Level", 10, "1.00", true)
	seedStockIn(t, db, exact.ID, wh.ID, 10, "PO-001", time.Now())

	report := svc.GetLowStockReport()
	if len(report.Items) != 1 {
		t.Fatalf("Product exactly at reorder level not reported, items = %d", len(report.Items))
	}
}

func TestGetStockReport(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	main := seedWarehouse(t, db, "Main", "WH001")
	backup := seedWarehouse(t, db, "Backup", "WH002")
	now := time.Now()

	widget := seedProduct(t, db, "WID-001", "Widget", 10, "2.50", true)
	gadget := seedProduct(t, db, "GAD-001", "Gadget", 10, "1.00", true)
	empty := seedProduct(t, db, "EMP-001", "Empty", 10, "9.99", true)

	seedStockIn(t, db, widget.ID, main.ID, 12, "PO-001", now)
	seedStockIn(t, db, widget.ID, backup.ID, 8, "PO-002", now)
	seedStockIn(t, db, gadget.ID, main.ID, 4, "PO-003", now)
	_ = empty

	report := svc.GetStockReport()
	if report.Partial {
		t.Fatalf("Report unexpectedly partial: %v", report.Unavailable)
	}

	if len(report.Items) != 3 {
		t.Fatalf("Stock report items = %d, want 3", len(report.Items))
	}
	if report.InStock != 1 || report.LowStock != 1 || report.OutOfStock != 1 {
		t.Errorf("Summary counts in/low/out = %d/%d/%d, want 1/1/1",
			report.InStock, report.LowStock, report.OutOfStock)
	}

	// 20 * 2.50 + 4 * 1.00 + 0 * 9.99
	if want := decimal.RequireFromString("54.00"); !report.TotalValue.Equal(want) {
		t.Errorf("Total value = %s, want %s", report.TotalValue, want)
	}

	// Widget splits across both warehouses
	var widgetItem *reports.StockReportItem
	for i := range report.Items {
		if report.Items[i].ProductID == widget.ID {
			widgetItem = &report.Items[i]
		}
	}
	if widgetItem == nil {
		t.Fatal("Widget missing from stock report")
	}
	if widgetItem.Balance != 20 {
		t.Errorf("Widget balance = %d, want 20", widgetItem.Balance)
	}
	if len(widgetItem.Warehouses) != 2 {
		t.Errorf("Widget warehouse breakdown entries = %d, want 2", len(widgetItem.Warehouses))
	}
}

func TestGetValuationReport(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	main := seedWarehouse(t, db, "Main", "WH001")
	backup := seedWarehouse(t, db, "Backup", "WH002")
	now := time.Now()

	widget := seedProduct(t, db, "WID-001", "Widget", 10, "2.00", true)
	seedStockIn(t, db, widget.ID, main.ID, 10, "PO-001", now)
	seedStockOut(t, db, widget.ID, main.ID, 4, "SO-001", now)
	seedStockIn(t, db, widget.ID, backup.ID, 3, "PO-002", now)

	report := svc.GetValuationReport()
	if report.Partial {
		t.Fatalf("Report unexpectedly partial: %v", report.Unavailable)
	}

	if len(report.Warehouses) != 2 {
		t.Fatalf("Valuation warehouses = %d, want 2", len(report.Warehouses))
	}

	// Ordered by code: WH001 then WH002
	if want := decimal.RequireFromString("12.00"); !report.Warehouses[0].Value.Equal(want) {
		t.Errorf("Main valuation = %s, want %s", report.Warehouses[0].Value, want)
	}
	if want := decimal.RequireFromString("6.00"); !report.Warehouses[1].Value.Equal(want) {
		t.Errorf("Backup valuation = %s, want %s", report.Warehouses[1].Value, want)
	}
	if want := decimal.RequireFromString("18.00"); !report.TotalValue.Equal(want) {
		t.Errorf("Total valuation = %s, want %s", report.TotalValue, want)
	}
}

func TestGetValuationReport_SkipsDeletedProducts(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	main := seedWarehouse(t, db, "Main", "WH001")
	now := time.Now()

	widget := seedProduct(t, db, "WID-001", "Widget", 10, "2.00", true)
	ghost := seedProduct(t, db, "GHO-001", "Ghost", 10, "100.00", true)
	seedStockIn(t, db, widget.ID, main.ID, 5, "PO-001", now)
	seedStockIn(t, db, ghost.ID, main.ID, 5, "PO-002", now)

	if err := db.Delete(&ghost).Error; err != nil {
		t.Fatalf("Failed to soft delete product: %v", err)
	}

	report := svc.GetValuationReport()
	if report.Partial {
		t.Fatalf("Report unexpectedly partial: %v", report.Unavailable)
	}

	// Only the surviving product counts: 5 * 2.00
	if want := decimal.RequireFromString("10.00"); !report.TotalValue.Equal(want) {
		t.Errorf("Total valuation = %s, want %s", report.TotalValue, want)
	}
}

func TestGetMonthlyReport(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	wh := seedWarehouse(t, db, "Main", "WH001")

	now := time.Now()
	lastMonth := now.AddDate(0, -1, 0)

	busy := seedProduct(t, db, "BSY-001", "Busy", 10, "1.00", true)
	quiet := seedProduct(t, db, "QIT-001", "Quiet", 10, "1.00", true)
	idle := seedProduct(t, db, "IDL-001", "Idle", 10, "1.00", true)

	seedStockIn(t, db, busy.ID, wh.ID, 20, "PO-001", now)
	seedStockOut(t, db, busy.ID, wh.ID, 5, "SO-001", now)
	seedStockIn(t, db, quiet.ID, wh.ID, 3, "PO-002", now)
	// Movement outside the month window must not count
	seedStockIn(t, db, idle.ID, wh.ID, 50, "PO-003", lastMonth)

	report := svc.GetMonthlyReport(now)
	if report.Partial {
		t.Fatalf("Report unexpectedly partial: %v", report.Unavailable)
	}

	if len(report.Items) != 2 {
		t.Fatalf("Monthly items = %d, want 2", len(report.Items))
	}

	// Ranked by combined volume descending
	if report.Items[0].ProductID != busy.ID {
		t.Errorf("Top mover = product %d, want %d", report.Items[0].ProductID, busy.ID)
	}
	if report.Items[0].Volume != 25 {
		t.Errorf("Top mover volume = %d, want 25", report.Items[0].Volume)
	}
	if report.Items[1].Volume != 3 {
		t.Errorf("Second mover volume = %d, want 3", report.Items[1].Volume)
	}
}

func TestGetMonthlyReport_TiesKeepProductOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	wh := seedWarehouse(t, db, "Main", "WH001")
	now := time.Now()

	first := seedProduct(t, db, "AAA-001", "First", 10, "1.00", true)
	second := seedProduct(t, db, "BBB-001", "Second", 10, "1.00", true)

	seedStockIn(t, db, second.ID, wh.ID, 5, "PO-001", now)
	seedStockIn(t, db, first.ID, wh.ID, 5, "PO-002", now)

	report := svc.GetMonthlyReport(now)
	if len(report.Items) != 2 {
		t.Fatalf("Monthly items = %d, want 2", len(report.Items))
	}

	// Equal volume: the product created first wins
	if report.Items[0].ProductID != first.ID {
		t.Errorf("Tie broken to product %d, want %d", report.Items[0].ProductID, first.ID)
	}
}

func TestGetDashboard(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	wh := seedWarehouse(t, db, "Main", "WH001")
	now := time.Now()

	widget := seedProduct(t, db, "WID-001", "Widget", 10, "2.00", true)
	seedStockIn(t, db, widget.ID, wh.ID, 7, "PO-001", now)
	seedStockOut(t, db, widget.ID, wh.ID, 2, "SO-001", now)

	dashboard := svc.GetDashboard()
	if dashboard.Partial {
		t.Fatalf("Dashboard unexpectedly partial: %v", dashboard.Unavailable)
	}

	if dashboard.TotalProducts != 1 {
		t.Errorf("Total products = %d, want 1", dashboard.TotalProducts)
	}
	if dashboard.TotalWarehouses != 1 {
		t.Errorf("Total warehouses = %d, want 1", dashboard.TotalWarehouses)
	}
	if dashboard.TodayStockIn != 7 {
		t.Errorf("Today stock in = %d, want 7", dashboard.TodayStockIn)
	}
	if dashboard.TodayStockOut != 2 {
		t.Errorf("Today stock out = %d, want 2", dashboard.TodayStockOut)
	}

	// Widget sits at balance 5 against reorder level 10
	if len(dashboard.LowStock) != 1 {
		t.Errorf("Dashboard low stock entries = %d, want 1", len(dashboard.LowStock))
	}
	if len(dashboard.RecentStockIns) != 1 || len(dashboard.RecentStockOuts) != 1 {
		t.Errorf("Recent activity in/out = %d/%d, want 1/1",
			len(dashboard.RecentStockIns), len(dashboard.RecentStockOuts))
	}
}

func hasSection(unavailable []string, section string) bool {
	for _, s := range unavailable {
		if s == section {
			return true
		}
	}
	return false
}

func TestReports_MarkPartialWhenSectionFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db)
	wh := seedWarehouse(t, db, "Main", "WH001")

	widget := seedProduct(t, db, "WID-001", "Widget", 10, "2.00", true)
	seedStockIn(t, db, widget.ID, wh.ID, 5, "PO-001", time.Now())

	// Break every query that touches stock outs. The next test's
	// setupTestDB re-creates the table through AutoMigrate.
	if err := db.Exec("DROP TABLE stock_outs").Error; err != nil {
		t.Fatalf("Failed to drop stock_outs: %v", err)
	}

	valuation := svc.GetValuationReport()
	if !valuation.Partial {
		t.Error("Valuation report not marked partial after section failure")
	}
	if !hasSection(valuation.Unavailable, "warehouse_valuation") {
		t.Errorf("Valuation unavailable sections = %v, want warehouse_valuation", valuation.Unavailable)
	}

	stock := svc.GetStockReport()
	if !stock.Partial {
		t.Error("Stock report not marked partial after section failure")
	}
	if !hasSection(stock.Unavailable, "stock_positions") {
		t.Errorf("Stock report unavailable sections = %v, want stock_positions", stock.Unavailable)
	}

	dashboard := svc.GetDashboard()
	if !dashboard.Partial {
		t.Error("Dashboard not marked partial after section failure")
	}
	if !hasSection(dashboard.Unavailable, "today_stock_out") {
		t.Errorf("Dashboard unavailable sections = %v, want today_stock_out", dashboard.Unavailable)
	}
	// Sections that do not touch the broken table still come through
	if dashboard.TotalProducts != 1 {
		t.Errorf("Total products = %d, want 1", dashboard.TotalProducts)
	}
}
