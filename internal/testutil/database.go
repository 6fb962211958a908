package testutil

import (
	"fmt"
	"os"
	"testing"

	"pos/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB はテスト用のPostgresへ繋ぐ。
// TEST_DATABASE_URL が無い・繋がらない場合はそのテストをskipする。
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skipf("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.StockMutation{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.Vendor{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.InventoryAdjustment{},
		&model.Sequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// CleanupTestDB は全テーブルを空にする。
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	if db == nil {
		return
	}

	tables := []string{
		"transaction_items", "transactions",
		"purchase_order_items", "purchase_orders",
		"inventory_adjustments", "stock_mutations",
		"sequences", "products", "vendors", "users",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("cleanup %s: %v", table, err)
		}
	}
}
