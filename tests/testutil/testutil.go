package testutil

import (
	"os"
	"testing"

	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// An unset GO_ENV is treated as test.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "" && env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a private in-memory SQLite database with every model migrated.
// The pool is pinned to one connection so the in-memory database lives as long as the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")
	return db
}

// CreateClient inserts an active client
func CreateClient(t *testing.T, db *gorm.DB, name, company string) models.Client {
	t.Helper()

	client := models.Client{Name: name, Company: company, IsActive: true}
	require.NoError(t, db.Create(&client).Error)
	return client
}

// CreateOrder inserts an order for client with the given code and total price
func CreateOrder(t *testing.T, db *gorm.DB, clientID uint, code string, payment string) models.Order {
	t.Helper()

	order := models.Order{
		OrderCode:  code,
		ClientID:   clientID,
		Quantity:   10,
		Payment:    decimal.RequireFromString(payment),
		Status:     models.OrderStatusSamplePreparing,
		FabricType: "Cotton",
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

// CreateInvoice inserts an invoice of amount against an order
func CreateInvoice(t *testing.T, db *gorm.DB, orderID uint, amount string) models.Invoice {
	t.Helper()

	invoice := models.Invoice{
		OrderID:       orderID,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: models.PaymentMethodCash,
	}
	require.NoError(t, db.Create(&invoice).Error)
	return invoice
}

// CreateMaterial inserts a material with the given stock figures
func CreateMaterial(t *testing.T, db *gorm.DB, name, quantity, threshold, maxQuantity string) models.Material {
	t.Helper()

	material := models.Material{
		Name:        name,
		Quantity:    decimal.RequireFromString(quantity),
		Unit:        "kg",
		Threshold:   decimal.RequireFromString(threshold),
		MaxQuantity: decimal.RequireFromString(maxQuantity),
	}
	require.NoError(t, db.Create(&material).Error)
	return material
}
