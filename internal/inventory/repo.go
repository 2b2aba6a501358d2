package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/pagination"
)

// Level is the derived on-hand view for one SKU. On-hand is always the sum
// of ledger movements, never a stored counter.
type Level struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
	OnHand   int    `json:"on_hand"`
}

// Repository manages persistence for the stock movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	CreateMovements(ctx context.Context, movements []models.StockMovement) error
	OnHand(ctx context.Context, sku string) (int, error)
	Levels(ctx context.Context) ([]Level, error)
	ListMovements(ctx context.Context, sku string, params pagination.Params) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) CreateMovements(ctx context.Context, movements []models.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

func (r *repository) OnHand(ctx context.Context, sku string) (int, error) {
	var onHand int
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("COALESCE(SUM(qty_change), 0)").
		Where("sku = ?", sku).
		Scan(&onHand).Error
	if err != nil {
		return 0, err
	}
	return onHand, nil
}

func (r *repository) Levels(ctx context.Context) ([]Level, error) {
	var levels []Level
	err := r.db.WithContext(ctx).
		Table("products").
		Select(`products.sku, products.name, products.category, products.active,
			COALESCE(SUM(stock_movements.qty_change), 0) AS on_hand`).
		Joins("LEFT JOIN stock_movements ON stock_movements.sku = products.sku").
		Group("products.sku, products.name, products.category, products.active").
		Order("products.sku ASC").
		Scan(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) ListMovements(ctx context.Context, sku string, params pagination.Params) ([]models.StockMovement, error) {
	params = pagination.Normalize(params)
	query := r.db.WithContext(ctx).Model(&models.StockMovement{})
	if sku != "" {
		query = query.Where("sku = ?", sku)
	}
	var movements []models.StockMovement
	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
