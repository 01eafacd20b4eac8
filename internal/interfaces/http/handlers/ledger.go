// internal/interfaces/http/handlers/ledger.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/ledger"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// LedgerHandler handles stock-in, stock-out and transfer endpoints
type LedgerHandler struct {
	ledgerService *ledger.Service
	config        *config.Config
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(db *gorm.DB, cfg *config.Config) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledger.NewService(db, cfg),
		config:        cfg,
	}
}

// CreateStockIn handles POST /stock-in
func (h *LedgerHandler) CreateStockIn(c *gin.Context) {
	var req ledger.StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	stockIn, err := h.ledgerService.CreateStockIn(&req, actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock in recorded successfully",
		"data":    stockIn,
	})
}

// CreateStockOut handles POST /stock-out
func (h *LedgerHandler) CreateStockOut(c *gin.Context) {
	var req ledger.StockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Pre-check gives the caller the availability message up front; the
	// creation path re-runs it inside the transaction and that run decides.
	if err := h.ledgerService.CheckStockOut(req.ProductID, req.WarehouseID, req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}

	stockOut, err := h.ledgerService.CreateStockOut(&req, actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock out recorded successfully",
		"data":    stockOut,
	})
}

// Transfer handles POST /transfers
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req ledger.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.ledgerService.Transfer(&req, actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Transfer completed successfully",
		"data":    result,
	})
}

// GetStockIns handles GET /stock-in
func (h *LedgerHandler) GetStockIns(c *gin.Context) {
	var req ledger.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	rows, err := h.ledgerService.GetStockIns(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock in records",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock in records retrieved successfully",
		"data":    rows,
	})
}

// GetStockOuts handles GET /stock-out
func (h *LedgerHandler) GetStockOuts(c *gin.Context) {
	var req ledger.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	rows, err := h.ledgerService.GetStockOuts(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stock out records",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock out records retrieved successfully",
		"data":    rows,
	})
}

// writeError maps ledger errors to HTTP responses
func (h *LedgerHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrSameWarehouse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case strings.Contains(err.Error(), "duplicate key"):
		c.JSON(http.StatusConflict, gin.H{"error": "Reference number already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
	}
}

// actorID returns the authenticated user id, if any
func actorID(c *gin.Context) *uint {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return &userID
	}
	return nil
}
