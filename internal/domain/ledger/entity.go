// internal/domain/ledger/entity.go
package ledger

import (
	"time"

	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/warehouse"
)

// StockIn records stock arriving at a warehouse. Rows are append-only:
// nothing in the application updates or deletes them after creation.
type StockIn struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"not null;index:idx_stock_ins_product_warehouse" json:"product_id"`
	WarehouseID  uint      `gorm:"not null;index:idx_stock_ins_product_warehouse" json:"warehouse_id"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Supplier     string    `gorm:"size:200" json:"supplier"`
	ReferenceNo  string    `gorm:"uniqueIndex;not null;size:100" json:"reference_no"`
	DateReceived time.Time `gorm:"not null;index" json:"date_received"`
	ReceivedBy   *uint     `gorm:"index" json:"received_by"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Product   catalog.Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Warehouse warehouse.Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
}

// StockOut records stock leaving a warehouse. Append-only like StockIn;
// creation is gated on the derived balance.
type StockOut struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index:idx_stock_outs_product_warehouse" json:"product_id"`
	WarehouseID uint      `gorm:"not null;index:idx_stock_outs_product_warehouse" json:"warehouse_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Customer    string    `gorm:"size:200" json:"customer"`
	ReferenceNo string    `gorm:"uniqueIndex;not null;size:100" json:"reference_no"`
	DateIssued  time.Time `gorm:"not null;index" json:"date_issued"`
	IssuedBy    *uint     `gorm:"index" json:"issued_by"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Product   catalog.Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Warehouse warehouse.Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
}

// TableName overrides
func (StockIn) TableName() string  { return "stock_ins" }
func (StockOut) TableName() string { return "stock_outs" }

// TransferReferenceFormat is the timestamp layout behind transfer reference
// numbers. Both rows of a transfer carry the same TRF-stamped reference.
const TransferReferenceFormat = "20060102150405"

// TransferReference builds the shared reference number for a transfer pair.
func TransferReference(at time.Time) string {
	return "TRF-" + at.Format(TransferReferenceFormat)
}
