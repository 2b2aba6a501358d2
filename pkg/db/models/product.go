package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry for a SKU. Products are archived via the
// active flag, never deleted, so historical order snapshots stay resolvable.
type Product struct {
	SKU       string          `gorm:"column:sku;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Category  string          `gorm:"column:category;not null"`
	UnitCost  decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null;default:0"`
	SellPrice decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2);not null;default:0"`
	Active    bool            `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
