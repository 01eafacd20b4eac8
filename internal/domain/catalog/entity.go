// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products; grouping is optional
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:100" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product represents a stocked item. Quantity on hand is never stored here;
// balances are derived from the stock ledger on every read.
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SKU          string          `gorm:"uniqueIndex;not null;size:50" json:"sku"`
	Name         string          `gorm:"not null;size:200" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	CategoryID   *uint           `gorm:"index" json:"category_id"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	ReorderLevel int             `gorm:"not null;default:10" json:"reorder_level"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// StockStatus is the three-valued state of a derived balance
type StockStatus string

const (
	StockStatusOut StockStatus = "out"
	StockStatusLow StockStatus = "low"
	StockStatusOK  StockStatus = "ok"
)

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// StatusFor derives the stock status for a balance against the reorder level.
func (p *Product) StatusFor(balance int) StockStatus {
	switch {
	case balance <= 0:
		return StockStatusOut
	case balance <= p.ReorderLevel:
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// StatusLabel returns the human-readable label for a stock status.
func StatusLabel(status StockStatus) string {
	switch status {
	case StockStatusOut:
		return "Out of Stock"
	case StockStatusLow:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

// SuggestedReorderQuantity computes how much to order for a low product:
// enough to reach double the reorder level, or double the reorder level
// outright when the balance is already zero or negative.
func (p *Product) SuggestedReorderQuantity(balance int) int {
	if balance > 0 {
		return 2*p.ReorderLevel - balance
	}
	return 2 * p.ReorderLevel
}

// Valuation returns balance x unit price. Negative balances produce a
// negative valuation; the report layer surfaces them as-is.
func (p *Product) Valuation(balance int) decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(balance)))
}
