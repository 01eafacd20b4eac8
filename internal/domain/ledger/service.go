// internal/domain/ledger/service.go
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers as structured rejections
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSameWarehouse     = errors.New("source and destination warehouse must differ")
	ErrNotFound          = errors.New("not found")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
)

// Service handles stock ledger business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new ledger service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// StockInRequest represents stock-in creation data
type StockInRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	WarehouseID uint   `json:"warehouse_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Supplier    string `json:"supplier"`
	ReferenceNo string `json:"reference_no" binding:"required"`
	Notes       string `json:"notes"`
}

// StockOutRequest represents stock-out creation data
type StockOutRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	WarehouseID uint   `json:"warehouse_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Customer    string `json:"customer"`
	ReferenceNo string `json:"reference_no" binding:"required"`
	Notes       string `json:"notes"`
}

// TransferRequest represents an inter-warehouse transfer
type TransferRequest struct {
	ProductID     uint `json:"product_id" binding:"required"`
	SourceID      uint `json:"source_warehouse_id" binding:"required"`
	DestinationID uint `json:"destination_warehouse_id" binding:"required"`
	Quantity      int  `json:"quantity" binding:"required"`
}

// TransferResult is the pair of ledger rows a transfer produced
type TransferResult struct {
	ReferenceNo string    `json:"reference_no"`
	StockOut    *StockOut `json:"stock_out"`
	StockIn     *StockIn  `json:"stock_in"`
}

// ListRequest filters ledger listings. Both listings are ordered by their
// transaction timestamp descending.
type ListRequest struct {
	ProductID   uint       `form:"product_id"`
	WarehouseID uint       `form:"warehouse_id"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Limit       int        `form:"limit,default=50"`
}

// Balance derives the current stock for a product, optionally scoped to one
// warehouse. Always recomputed from the full ledger; no cached counters.
// Products with no transactions yield 0. Negative values (possible only when
// rows were inserted past the gate) are reported truthfully, not clamped.
func (s *Service) Balance(productID uint, warehouseID *uint) (int, error) {
	return s.balance(s.db, productID, warehouseID)
}

func (s *Service) balance(db *gorm.DB, productID uint, warehouseID *uint) (int, error) {
	var totalIn, totalOut int64

	inQuery := db.Model(&StockIn{}).Where("product_id = ?", productID)
	outQuery := db.Model(&StockOut{}).Where("product_id = ?", productID)
	if warehouseID != nil {
		inQuery = inQuery.Where("warehouse_id = ?", *warehouseID)
		outQuery = outQuery.Where("warehouse_id = ?", *warehouseID)
	}

	if err := inQuery.Select("COALESCE(SUM(quantity), 0)").Scan(&totalIn).Error; err != nil {
		return 0, fmt.Errorf("failed to sum stock in: %w", err)
	}
	if err := outQuery.Select("COALESCE(SUM(quantity), 0)").Scan(&totalOut).Error; err != nil {
		return 0, fmt.Errorf("failed to sum stock out: %w", err)
	}

	return int(totalIn - totalOut), nil
}

// CheckStockOut is the form-level validation pass: it reports an
// insufficient-stock rejection without writing anything. The same check runs
// again inside the write transaction, and that second check is authoritative.
func (s *Service) CheckStockOut(productID, warehouseID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	balance, err := s.Balance(productID, &warehouseID)
	if err != nil {
		return err
	}
	if quantity > balance {
		return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, balance, quantity)
	}
	return nil
}

// CreateStockIn appends a stock-in row
func (s *Service) CreateStockIn(req *StockInRequest, userID *uint) (*StockIn, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.resolveReferences(req.ProductID, req.WarehouseID); err != nil {
		return nil, err
	}

	stockIn := &StockIn{
		ProductID:    req.ProductID,
		WarehouseID:  req.WarehouseID,
		Quantity:     req.Quantity,
		Supplier:     req.Supplier,
		ReferenceNo:  req.ReferenceNo,
		DateReceived: time.Now(),
		ReceivedBy:   userID,
		Notes:        req.Notes,
	}

	// Duplicate reference numbers surface as the storage layer's uniqueness
	// violation; the ledger does not pre-check them.
	if err := s.db.Create(stockIn).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock in: %w", err)
	}

	if err := s.db.Preload("Product").Preload("Warehouse").First(stockIn, stockIn.ID).Error; err != nil {
		return nil, fmt.Errorf("stock in %s recorded but reload failed: %w", stockIn.ReferenceNo, err)
	}
	return stockIn, nil
}

// CreateStockOut appends a stock-out row after the validation gate passes.
// The balance is recomputed inside the transaction under a per
// (product, warehouse) advisory lock so that two concurrent submissions
// cannot both observe a sufficient balance and overdraw the stock.
func (s *Service) CreateStockOut(req *StockOutRequest, userID *uint) (*StockOut, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.resolveReferences(req.ProductID, req.WarehouseID); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := lockStock(tx, req.ProductID, req.WarehouseID); err != nil {
		tx.Rollback()
		return nil, err
	}

	balance, err := s.balance(tx, req.ProductID, &req.WarehouseID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if req.Quantity > balance {
		tx.Rollback()
		return nil, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, balance, req.Quantity)
	}

	stockOut := &StockOut{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Customer:    req.Customer,
		ReferenceNo: req.ReferenceNo,
		DateIssued:  time.Now(),
		IssuedBy:    userID,
		Notes:       req.Notes,
	}

	if err := tx.Create(stockOut).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record stock out: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit stock out: %w", err)
	}

	if err := s.db.Preload("Product").Preload("Warehouse").First(stockOut, stockOut.ID).Error; err != nil {
		return nil, fmt.Errorf("stock out %s recorded but reload failed: %w", stockOut.ReferenceNo, err)
	}
	return stockOut, nil
}

// Transfer moves stock between two warehouses as one transaction: a StockOut
// at the source and a StockIn at the destination, sharing one reference
// number and cross-referencing notes. Either write failing rolls back both,
// so the ledger never holds a half-transferred pair.
func (s *Service) Transfer(req *TransferRequest, userID *uint) (*TransferResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.SourceID == req.DestinationID {
		return nil, ErrSameWarehouse
	}
	if err := s.resolveReferences(req.ProductID, req.SourceID); err != nil {
		return nil, err
	}

	var destination warehouse.Warehouse
	if err := s.db.Where("id = ?", req.DestinationID).First(&destination).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("warehouse %d: %w", req.DestinationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve destination warehouse: %w", err)
	}
	var source warehouse.Warehouse
	if err := s.db.Where("id = ?", req.SourceID).First(&source).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve source warehouse: %w", err)
	}

	now := time.Now()
	referenceNo := TransferReference(now)
	result := &TransferResult{ReferenceNo: referenceNo}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := lockStock(tx, req.ProductID, req.SourceID); err != nil {
		tx.Rollback()
		return nil, err
	}

	balance, err := s.balance(tx, req.ProductID, &req.SourceID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if req.Quantity > balance {
		tx.Rollback()
		return nil, fmt.Errorf("%w: available %d at source, requested %d", ErrInsufficientStock, balance, req.Quantity)
	}

	stockOut := &StockOut{
		ProductID:   req.ProductID,
		WarehouseID: req.SourceID,
		Quantity:    req.Quantity,
		Customer:    fmt.Sprintf("Transfer to %s", destination.Name),
		ReferenceNo: referenceNo + "-OUT",
		DateIssued:  now,
		IssuedBy:    userID,
		Notes:       fmt.Sprintf("Transfer %s: moved to warehouse %s (%s)", referenceNo, destination.Name, destination.Code),
	}
	if err := tx.Create(stockOut).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record transfer out: %w", err)
	}

	stockIn := &StockIn{
		ProductID:    req.ProductID,
		WarehouseID:  req.DestinationID,
		Quantity:     req.Quantity,
		Supplier:     fmt.Sprintf("Transfer from %s", source.Name),
		ReferenceNo:  referenceNo + "-IN",
		DateReceived: now,
		ReceivedBy:   userID,
		Notes:        fmt.Sprintf("Transfer %s: received from warehouse %s (%s)", referenceNo, source.Name, source.Code),
	}
	if err := tx.Create(stockIn).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record transfer in: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	result.StockOut = stockOut
	result.StockIn = stockIn
	return result, nil
}

// GetStockIns lists stock-in rows, newest first
func (s *Service) GetStockIns(req *ListRequest) ([]StockIn, error) {
	var rows []StockIn
	query := s.applyListFilters(s.db.Model(&StockIn{}), req, "date_received")
	if err := query.Preload("Product").Preload("Warehouse").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock in: %w", err)
	}
	return rows, nil
}

// GetStockOuts lists stock-out rows, newest first
func (s *Service) GetStockOuts(req *ListRequest) ([]StockOut, error) {
	var rows []StockOut
	query := s.applyListFilters(s.db.Model(&StockOut{}), req, "date_issued")
	if err := query.Preload("Product").Preload("Warehouse").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock out: %w", err)
	}
	return rows, nil
}

func (s *Service) applyListFilters(query *gorm.DB, req *ListRequest, dateColumn string) *gorm.DB {
	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.WarehouseID > 0 {
		query = query.Where("warehouse_id = ?", req.WarehouseID)
	}
	if req.From != nil {
		query = query.Where(dateColumn+" >= ?", *req.From)
	}
	if req.To != nil {
		query = query.Where(dateColumn+" < ?", req.To.AddDate(0, 0, 1))
	}

	limit := req.Limit
	switch limit {
	case 5, 10, 20, 50, 100:
	default:
		limit = 50
	}

	return query.Order(dateColumn + " DESC").Limit(limit)
}

// resolveReferences verifies product and warehouse exist before a write.
// Product active state is deliberately not consulted: the ledger accepts
// transactions for inactive products, matching balance-only validation.
func (s *Service) resolveReferences(productID, warehouseID uint) error {
	var product catalog.Product
	if err := s.db.Where("id = ?", productID).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return fmt.Errorf("failed to resolve product: %w", err)
	}

	var wh warehouse.Warehouse
	if err := s.db.Where("id = ?", warehouseID).First(&wh).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("warehouse %d: %w", warehouseID, ErrNotFound)
		}
		return fmt.Errorf("failed to resolve warehouse: %w", err)
	}

	return nil
}

// lockStock serializes writers on one (product, warehouse) pair for the
// duration of the transaction. Advisory locks are used because the balance is
// an aggregate over many rows; there is no single counter row to lock.
// The pair is packed into one bigint key (product high, warehouse low) so
// distinct pairs never alias for ids below 2^32.
func lockStock(tx *gorm.DB, productID, warehouseID uint) error {
	key := int64(productID)<<32 | int64(uint32(warehouseID))
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
		return fmt.Errorf("failed to lock stock for product %d warehouse %d: %w", productID, warehouseID, err)
	}
	return nil
}
