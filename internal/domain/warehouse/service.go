// internal/domain/warehouse/service.go
package warehouse

import (
	"fmt"

	"github.com/your-org/stockledger-backend/internal/config"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a warehouse cannot be resolved
var ErrNotFound = fmt.Errorf("not found")

// Service handles warehouse business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new warehouse service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateWarehouseRequest represents warehouse creation data
type CreateWarehouseRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code"`
	Location  string `json:"location"`
	ManagerID *uint  `json:"manager_id"`
}

// UpdateWarehouseRequest represents warehouse update data
type UpdateWarehouseRequest struct {
	Name      *string `json:"name"`
	Location  *string `json:"location"`
	ManagerID *uint   `json:"manager_id"`
	IsActive  *bool   `json:"is_active"`
}

// CreateWarehouse creates a new warehouse. When no code is supplied one is
// drawn from the dedicated sequence, so the first warehouse gets WH001, the
// second WH002, regardless of name or concurrent creations.
func (s *Service) CreateWarehouse(req *CreateWarehouseRequest) (*Warehouse, error) {
	code := req.Code
	if code == "" {
		next, err := s.nextCode()
		if err != nil {
			return nil, err
		}
		code = next
	}

	// Check if code already exists
	var existing Warehouse
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("warehouse with code '%s' already exists", code)
	}

	warehouse := &Warehouse{
		Name:      req.Name,
		Code:      code,
		Location:  req.Location,
		ManagerID: req.ManagerID,
		IsActive:  true,
	}

	if err := s.db.Create(warehouse).Error; err != nil {
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}

	return warehouse, nil
}

// GetWarehouses retrieves all active warehouses
func (s *Service) GetWarehouses() ([]Warehouse, error) {
	var warehouses []Warehouse
	if err := s.db.Where("is_active = ?", true).Order("code ASC").Find(&warehouses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve warehouses: %w", err)
	}
	return warehouses, nil
}

// GetWarehouse retrieves a warehouse by ID
func (s *Service) GetWarehouse(id uint) (*Warehouse, error) {
	var warehouse Warehouse
	if err := s.db.Where("id = ?", id).First(&warehouse).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("warehouse %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve warehouse: %w", err)
	}
	return &warehouse, nil
}

// UpdateWarehouse updates warehouse fields; the code is immutable once assigned
func (s *Service) UpdateWarehouse(id uint, req *UpdateWarehouseRequest) (*Warehouse, error) {
	warehouse, err := s.GetWarehouse(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.ManagerID != nil {
		updates["manager_id"] = *req.ManagerID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(warehouse).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update warehouse: %w", err)
	}

	return warehouse, nil
}

// DeleteWarehouse soft deletes a warehouse. Ledger rows referencing it
// survive, so historical balances stay derivable.
func (s *Service) DeleteWarehouse(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Warehouse{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete warehouse: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("warehouse %d: %w", id, ErrNotFound)
	}
	return nil
}

// nextCode draws the next value from the code sequence
func (s *Service) nextCode() (string, error) {
	var next int64
	if err := s.db.Raw(fmt.Sprintf("SELECT nextval('%s')", CodeSequenceName)).Scan(&next).Error; err != nil {
		return "", fmt.Errorf("failed to allocate warehouse code: %w", err)
	}
	return FormatCode(next), nil
}
