package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  sku TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  unit_cost NUMERIC NOT NULL DEFAULT 0,
  sell_price NUMERIC NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku, category string, active bool) models.Product {
	t.Helper()

	product := models.Product{
		SKU:       sku,
		Name:      "Product " + sku,
		Category:  category,
		UnitCost:  decimal.NewFromInt(60),
		SellPrice: decimal.NewFromInt(100),
		Active:    active,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestRepositoryFindBySKUs(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "VAPE-001", "vape", true)
	seedProduct(t, db, "JUICE-002", "juice", true)
	seedProduct(t, db, "COIL-003", "parts", false)

	products, err := repo.FindBySKUs(ctx, []string{"VAPE-001", "COIL-003", "GHOST-999"})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = repo.FindBySKUs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRepositoryListActiveFiltersInactive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "VAPE-001", "vape", true)
	seedProduct(t, db, "COIL-003", "parts", false)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "VAPE-001", active[0].SKU)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepositoryUpdateChangesColumns(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "VAPE-001", "vape", true)

	require.NoError(t, repo.Update(ctx, "VAPE-001", map[string]any{
		"sell_price": decimal.NewFromInt(150),
		"active":     false,
	}))

	product, err := repo.FindBySKU(ctx, "VAPE-001")
	require.NoError(t, err)
	assert.False(t, product.Active)
	assert.True(t, product.SellPrice.Equal(decimal.NewFromInt(150)))
}
