// internal/interfaces/http/handlers/warehouse.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// WarehouseHandler handles warehouse endpoints
type WarehouseHandler struct {
	warehouseService *warehouse.Service
	config           *config.Config
}

// NewWarehouseHandler creates a new warehouse handler
func NewWarehouseHandler(db *gorm.DB, cfg *config.Config) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouse.NewService(db, cfg),
		config:           cfg,
	}
}

// GetWarehouses handles GET /warehouses
func (h *WarehouseHandler) GetWarehouses(c *gin.Context) {
	warehouses, err := h.warehouseService.GetWarehouses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve warehouses",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouses retrieved successfully",
		"data":    warehouses,
	})
}

// GetWarehouse handles GET /warehouses/:id
func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid warehouse ID",
		})
		return
	}

	wh, err := h.warehouseService.GetWarehouse(uint(id))
	if err != nil {
		if errors.Is(err, warehouse.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Warehouse not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve warehouse",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse retrieved successfully",
		"data":    wh,
	})
}

// CreateWarehouse handles POST /warehouses
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req warehouse.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	wh, err := h.warehouseService.CreateWarehouse(&req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Warehouse created successfully",
		"data":    wh,
	})
}

// UpdateWarehouse handles PUT /warehouses/:id
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid warehouse ID",
		})
		return
	}

	var req warehouse.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	wh, err := h.warehouseService.UpdateWarehouse(uint(id), &req)
	if err != nil {
		if errors.Is(err, warehouse.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Warehouse not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update warehouse",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse updated successfully",
		"data":    wh,
	})
}

// DeleteWarehouse handles DELETE /warehouses/:id
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid warehouse ID",
		})
		return
	}

	if err := h.warehouseService.DeleteWarehouse(uint(id)); err != nil {
		if errors.Is(err, warehouse.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Warehouse not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete warehouse",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse deleted successfully",
	})
}
