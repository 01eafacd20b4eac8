// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/handlers"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	setupAuthRoutes(rg, db, cfg)
	setupCatalogRoutes(rg, db, cfg)
	setupWarehouseRoutes(rg, db, cfg)
	setupLedgerRoutes(rg, db, cfg)
	setupStockRoutes(rg, db, cfg)
	setupReportRoutes(rg, db, cfg, log)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/me", authHandler.Me)
		}
	}
}

// setupCatalogRoutes sets up product and category routes
func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("", catalogHandler.GetProducts)
		products.GET("/:id", catalogHandler.GetProduct)

		// Catalog mutations are admin-only
		admin := products.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", catalogHandler.CreateProduct)
			admin.PUT("/:id", catalogHandler.UpdateProduct)
			admin.DELETE("/:id", catalogHandler.DeleteProduct)
		}
	}

	categories := rg.Group("/categories")
	categories.Use(middleware.AuthMiddleware(cfg))
	{
		categories.GET("", catalogHandler.GetCategories)

		admin := categories.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", catalogHandler.CreateCategory)
			admin.PUT("/:id", catalogHandler.UpdateCategory)
			admin.DELETE("/:id", catalogHandler.DeleteCategory)
		}
	}
}

// setupWarehouseRoutes sets up warehouse routes
func setupWarehouseRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	warehouseHandler := handlers.NewWarehouseHandler(db, cfg)

	warehouses := rg.Group("/warehouses")
	warehouses.Use(middleware.AuthMiddleware(cfg))
	{
		warehouses.GET("", warehouseHandler.GetWarehouses)
		warehouses.GET("/:id", warehouseHandler.GetWarehouse)

		// Warehouse mutations are admin-only
		admin := warehouses.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", warehouseHandler.CreateWarehouse)
			admin.PUT("/:id", warehouseHandler.UpdateWarehouse)
			admin.DELETE("/:id", warehouseHandler.DeleteWarehouse)
		}
	}
}

// setupLedgerRoutes sets up stock transaction routes
func setupLedgerRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	ledgerHandler := handlers.NewLedgerHandler(db, cfg)

	stockIn := rg.Group("/stock-in")
	stockIn.Use(middleware.AuthMiddleware(cfg))
	{
		stockIn.GET("", ledgerHandler.GetStockIns)
		stockIn.POST("", ledgerHandler.CreateStockIn)
	}

	stockOut := rg.Group("/stock-out")
	stockOut.Use(middleware.AuthMiddleware(cfg))
	{
		stockOut.GET("", ledgerHandler.GetStockOuts)
		stockOut.POST("", ledgerHandler.CreateStockOut)
	}

	transfers := rg.Group("/transfers")
	transfers.Use(middleware.AuthMiddleware(cfg))
	{
		transfers.POST("", ledgerHandler.Transfer)
	}
}

// setupStockRoutes sets up the stock lookup route
func setupStockRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	stockHandler := handlers.NewStockHandler(db, cfg)

	// Lookup stays public so shop-floor screens can poll it without a token
	stock := rg.Group("/stock")
	{
		stock.GET("/:productId", stockHandler.GetStock)
	}
}

// setupReportRoutes sets up reporting routes
func setupReportRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	reportsHandler := handlers.NewReportsHandler(db, cfg, log)

	reports := rg.Group("/reports")
	reports.Use(middleware.AuthMiddleware(cfg))
	{
		reports.GET("/dashboard", reportsHandler.GetDashboard)
		reports.GET("/low-stock", reportsHandler.GetLowStockReport)
		reports.GET("/stock", reportsHandler.GetStockReport)
		reports.GET("/stock/pdf", reportsHandler.GetStockReportPDF)
		reports.GET("/valuation", reportsHandler.GetValuationReport)
		reports.GET("/monthly", reportsHandler.GetMonthlyReport)
	}
}
