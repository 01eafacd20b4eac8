// internal/domain/warehouse/entity.go
package warehouse

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Warehouse represents a storage location
type Warehouse struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:200" json:"name"`
	Code      string         `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Location  string         `gorm:"size:300" json:"location"`
	ManagerID *uint          `gorm:"index" json:"manager_id"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Warehouse) TableName() string { return "warehouses" }

// CodeSequenceName is the Postgres sequence that backs code assignment.
// A dedicated sequence keeps concurrent creations from colliding, which a
// row-count-derived code cannot guarantee.
const CodeSequenceName = "warehouse_code_seq"

// FormatCode renders a sequence value as a warehouse code, e.g. 1 -> WH001.
func FormatCode(n int64) string {
	return fmt.Sprintf("WH%03d", n)
}
