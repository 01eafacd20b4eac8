package ledger_test

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/ledger"
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

type fixture struct {
	product catalog.Product
	main    warehouse.Warehouse
	backup  warehouse.Warehouse
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	f := fixture{
		product: catalog.Product{SKU: "WID-001", Name: "Widget", ReorderLevel: 10, IsActive: true},
		main:    warehouse.Warehouse{Name: "Main", Code: "WH001", IsActive: true},
		backup:  warehouse.Warehouse{Name: "Backup", Code: "WH002", IsActive: true},
	}

	if err := db.Create(&f.product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	if err := db.Create(&f.main).Error; err != nil {
		t.Fatalf("Failed to seed main warehouse: %v", err)
	}
	if err := db.Create(&f.backup).Error; err != nil {
		t.Fatalf("Failed to seed backup warehouse: %v", err)
	}

	return f
}

func receive(t *testing.T, svc *ledger.Service, f fixture, warehouseID uint, qty int, ref string) {
	t.Helper()
	_, err := svc.CreateStockIn(&ledger.StockInRequest{
		ProductID:   f.product.ID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		Supplier:    "Acme Supplies",
		ReferenceNo: ref,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to record stock in %s: %v", ref, err)
	}
}

func TestBalance_NoTransactions(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	balance, err := svc.Balance(f.product.ID, nil)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Balance of untransacted product = %d, want 0", balance)
	}
}

func TestBalance_SumsLedger(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	receive(t, svc, f, f.main.ID, 10, "PO-001")
	receive(t, svc, f, f.main.ID, 5, "PO-002")
	receive(t, svc, f, f.backup.ID, 7, "PO-003")

	if _, err := svc.CreateStockOut(&ledger.StockOutRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID,
		Quantity:    3,
		Customer:    "Retail Co",
		ReferenceNo: "SO-001",
	}, nil); err != nil {
		t.Fatalf("Failed to record stock out: %v", err)
	}

	total, err := svc.Balance(f.product.ID, nil)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if total != 19 {
		t.Errorf("Total balance = %d, want 19", total)
	}

	mainBalance, err := svc.Balance(f.product.ID, &f.main.ID)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if mainBalance != 12 {
		t.Errorf("Main warehouse balance = %d, want 12", mainBalance)
	}
}

func TestCreateTransactions_LoadReferences(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	stockIn, err := svc.CreateStockIn(&ledger.StockInRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID,
		Quantity:    8,
		ReferenceNo: "PO-001",
	}, nil)
	if err != nil {
		t.Fatalf("CreateStockIn failed: %v", err)
	}
	if stockIn.Product.ID != f.product.ID {
		t.Errorf("StockIn product not loaded, got id %d", stockIn.Product.ID)
	}
	if stockIn.Warehouse.ID != f.main.ID {
		t.Errorf("StockIn warehouse not loaded, got id %d", stockIn.Warehouse.ID)
	}

	stockOut, err := svc.CreateStockOut(&ledger.StockOutRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID,
		Quantity:    3,
		ReferenceNo: "SO-001",
	}, nil)
	if err != nil {
		t.Fatalf("CreateStockOut failed: %v", err)
	}
	if stockOut.Product.ID != f.product.ID {
		t.Errorf("StockOut product not loaded, got id %d", stockOut.Product.ID)
	}
	if stockOut.Warehouse.ID != f.main.ID {
		t.Errorf("StockOut warehouse not loaded, got id %d", stockOut.Warehouse.ID)
	}
}

func TestCreateStockOut_ExactDrain(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	receive(t, svc, f, f.main.ID, 10, "PO-001")

	// Issuing the entire balance is allowed; only going below zero is not
	if _, err := svc.CreateStockOut(&ledger.StockOutRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID,
		Quantity:    10,
		ReferenceNo: "SO-001",
	}, nil); err != nil {
		t.Fatalf("Exact drain rejected: %v", err)
	}

	balance, err := svc.Balance(f.product.ID, &f.main.ID)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Balance after exact drain = %d, want 0", balance)
	}
}

func TestCreateStockOut_Overdraw(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	receive(t, svc, f, f.main.ID, 5, "PO-001")

	_, err := svc.CreateStockOut(&ledger.StockOutRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID,
		Quantity:    6,
		ReferenceNo: "SO-001",
	}, nil)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("Overdraw error = %v, want ErrInsufficientStock", err)
	}

	// Nothing was written
	var count int64
	db.Model(&ledger.StockOut{}).Count(&count)
	if count != 0 {
		t.Errorf("Stock out rows after rejected overdraw = %d, want 0", count)
	}

	balance, _ := svc.Balance(f.product.ID, &f.main.ID)
	if balance != 5 {
		t.Errorf("Balance after rejected overdraw = %d, want 5", balance)
	}
}

func TestCreateStockOut_ConcurrentSubmissions(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	// Balance covers exactly one of the two submissions
	receive(t, svc, f, f.main.ID, 5, "PO-001")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateStockOut(&ledger.StockOutRequest{
				ProductID:   f.product.ID,
				WarehouseID: f.main.ID,
				Quantity:    5,
				ReferenceNo: fmt.Sprintf("SO-%03d", i),
			}, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ledger.ErrInsufficientStock) {
			t.Errorf("Concurrent stock out error = %v, want ErrInsufficientStock", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Concurrent submissions committed = %d, want exactly 1", succeeded)
	}

	var count int64
	db.Model(&ledger.StockOut{}).Count(&count)
	if count != 1 {
		t.Errorf("Stock out rows = %d, want 1", count)
	}

	balance, err := svc.Balance(f.product.ID, &f.main.ID)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Balance after concurrent submissions = %d, want 0", balance)
	}
}

func TestCreateStockOut_InvalidQuantity(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	for _, qty := range []int{0, -4} {
		_, err := svc.CreateStockOut(&ledger.StockOutRequest{
			ProductID:   f.product.ID,
			WarehouseID: f.main.ID,
			Quantity:    qty,
			ReferenceNo: fmt.Sprintf("SO-%d", qty),
		}, nil)
		if !errors.Is(err, ledger.ErrInvalidQuantity) {
			t.Errorf("CreateStockOut(qty=%d) error = %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestCreateStockIn_UnknownReferences(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	_, err := svc.CreateStockIn(&ledger.StockInRequest{
		ProductID:   f.product.ID + 999,
		WarehouseID: f.main.ID,
		Quantity:    1,
		ReferenceNo: "PO-404",
	}, nil)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Unknown product error = %v, want ErrNotFound", err)
	}

	_, err = svc.CreateStockIn(&ledger.StockInRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID + 999,
		Quantity:    1,
		ReferenceNo: "PO-405",
	}, nil)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Unknown warehouse error = %v, want ErrNotFound", err)
	}
}

func TestTransfer_SameWarehouse(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	_, err := svc.Transfer(&ledger.TransferRequest{
		ProductID:     f.product.ID,
		SourceID:      f.main.ID,
		DestinationID: f.main.ID,
		Quantity:      1,
	}, nil)
	if !errors.Is(err, ledger.ErrSameWarehouse) {
		t.Errorf("Same-warehouse transfer error = %v, want ErrSameWarehouse", err)
	}
}

func TestTransfer_MovesStock(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	receive(t, svc, f, f.main.ID, 10, "PO-001")

	result, err := svc.Transfer(&ledger.TransferRequest{
		ProductID:     f.product.ID,
		SourceID:      f.main.ID,
		DestinationID: f.backup.ID,
		Quantity:      4,
	}, nil)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	sourceBalance, _ := svc.Balance(f.product.ID, &f.main.ID)
	destBalance, _ := svc.Balance(f.product.ID, &f.backup.ID)
	total, _ := svc.Balance(f.product.ID, nil)

	if sourceBalance != 6 {
		t.Errorf("Source balance after transfer = %d, want 6", sourceBalance)
	}
	if destBalance != 4 {
		t.Errorf("Destination balance after transfer = %d, want 4", destBalance)
	}
	if total != 10 {
		t.Errorf("Total balance after transfer = %d, want 10", total)
	}

	// The pair shares one reference stamp with direction suffixes
	if result.StockOut.ReferenceNo != result.ReferenceNo+"-OUT" {
		t.Errorf("StockOut reference = %q, want %q", result.StockOut.ReferenceNo, result.ReferenceNo+"-OUT")
	}
	if result.StockIn.ReferenceNo != result.ReferenceNo+"-IN" {
		t.Errorf("StockIn reference = %q, want %q", result.StockIn.ReferenceNo, result.ReferenceNo+"-IN")
	}
}

func TestTransfer_InsufficientSource(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	receive(t, svc, f, f.main.ID, 3, "PO-001")

	_, err := svc.Transfer(&ledger.TransferRequest{
		ProductID:     f.product.ID,
		SourceID:      f.main.ID,
		DestinationID: f.backup.ID,
		Quantity:      4,
	}, nil)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("Insufficient transfer error = %v, want ErrInsufficientStock", err)
	}

	// Neither half of the pair was written
	var outs, ins int64
	db.Model(&ledger.StockOut{}).Count(&outs)
	db.Model(&ledger.StockIn{}).Count(&ins)
	if outs != 0 {
		t.Errorf("Stock out rows after rejected transfer = %d, want 0", outs)
	}
	if ins != 1 {
		t.Errorf("Stock in rows after rejected transfer = %d, want 1 (the seed receipt)", ins)
	}
}

func TestCreateStockIn_DuplicateReference(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := ledger.NewService(db, &config.Config{})

	receive(t, svc, f, f.main.ID, 5, "PO-001")

	_, err := svc.CreateStockIn(&ledger.StockInRequest{
		ProductID:   f.product.ID,
		WarehouseID: f.main.ID,
		Quantity:    5,
		ReferenceNo: "PO-001",
	}, nil)
	if err == nil {
		t.Fatal("Duplicate reference number accepted, want uniqueness violation")
	}
}
