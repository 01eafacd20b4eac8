// internal/interfaces/http/handlers/stock.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/ledger"
	"github.com/your-org/stockledger-backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// StockHandler answers point queries for a product's derived balance
type StockHandler struct {
	catalogService   *catalog.Service
	warehouseService *warehouse.Service
	ledgerService    *ledger.Service
	config           *config.Config
}

// NewStockHandler creates a new stock handler
func NewStockHandler(db *gorm.DB, cfg *config.Config) *StockHandler {
	return &StockHandler{
		catalogService:   catalog.NewService(db, cfg),
		warehouseService: warehouse.NewService(db, cfg),
		ledgerService:    ledger.NewService(db, cfg),
		config:           cfg,
	}
}

// StockLookupResponse is the derived stock position of one product
type StockLookupResponse struct {
	ProductID    uint                `json:"product_id"`
	Name         string              `json:"name"`
	SKU          string              `json:"sku"`
	Warehouse    string              `json:"warehouse"`
	Stock        int                 `json:"stock"`
	Status       catalog.StockStatus `json:"status"`
	StatusLabel  string              `json:"status_label"`
	ReorderLevel int                 `json:"reorder_level"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
}

// GetStock handles GET /stock/:productId. The balance is summed from the
// ledger on every call; an optional warehouse_id query scopes it to one
// warehouse.
func (h *StockHandler) GetStock(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.catalogService.GetProduct(uint(productID))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve product",
		})
		return
	}

	warehouseName := "all warehouses"
	var warehouseID *uint
	if raw := c.Query("warehouse_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
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

		warehouseName = wh.Name
		warehouseID = &wh.ID
	}

	balance, err := h.ledgerService.Balance(product.ID, warehouseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to derive stock balance",
		})
		return
	}

	status := product.StatusFor(balance)
	response := StockLookupResponse{
		ProductID:    product.ID,
		Name:         product.Name,
		SKU:          product.SKU,
		Warehouse:    warehouseName,
		Stock:        balance,
		Status:       status,
		StatusLabel:  catalog.StatusLabel(status),
		ReorderLevel: product.ReorderLevel,
		UnitPrice:    product.UnitPrice,
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock retrieved successfully",
		"data":    response,
	})
}
