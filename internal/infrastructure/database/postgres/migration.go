// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/catalog"
	"github.com/your-org/stockledger-backend/internal/domain/ledger"
	"github.com/your-org/stockledger-backend/internal/domain/user"
	"github.com/your-org/stockledger-backend/internal/domain/warehouse"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Dependency order: referenced tables first
	models := []interface{}{
		&user.User{},

		&catalog.Category{},
		&catalog.Product{},

		&warehouse.Warehouse{},

		&ledger.StockIn{},
		&ledger.StockOut{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed successfully")
	return nil
}

// CreateSequences creates the warehouse code sequence. Codes must come from
// an atomic source; deriving them from a row count races under concurrent
// warehouse creation.
func (m *Migration) CreateSequences() error {
	seq := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", warehouse.CodeSequenceName)
	if err := m.db.Exec(seq).Error; err != nil {
		return fmt.Errorf("failed to create warehouse code sequence: %w", err)
	}
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("Creating additional database indexes...")

	indexes := []string{
		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_reorder_level ON products(reorder_level)",

		// Ledger indexes: balance sums group on (product, warehouse), lists
		// order on the transaction timestamp
		"CREATE INDEX IF NOT EXISTS idx_stock_ins_date_received ON stock_ins(date_received DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_outs_date_issued ON stock_outs(date_issued DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_ins_warehouse ON stock_ins(warehouse_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_outs_warehouse ON stock_outs(warehouse_id)",

		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData seeds a development admin account and starter catalog data
func (m *Migration) SeedInitialData(cfg *config.Config) error {
	log.Println("Seeding initial data...")

	var adminCount int64
	m.db.Model(&user.User{}).Where("is_admin = ?", true).Count(&adminCount)
	if adminCount == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("Admin1234"), cfg.Security.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		admin := user.User{
			Email:     "admin@stockledger.local",
			Password:  string(hashed),
			FirstName: "System",
			LastName:  "Admin",
			IsActive:  true,
			IsAdmin:   true,
		}
		if err := m.db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Println("Seeded development admin user admin@stockledger.local")
	}

	var categoryCount int64
	m.db.Model(&catalog.Category{}).Count(&categoryCount)
	if categoryCount == 0 {
		categories := []catalog.Category{
			{Name: "General", Description: "Uncategorized products"},
			{Name: "Electronics", Description: "Electronic goods and accessories"},
		}
		if err := m.db.Create(&categories).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}
