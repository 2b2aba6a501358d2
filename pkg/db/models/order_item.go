package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a line on an order. Category, cost, and price are copied from
// the catalog when the line is written and never re-derived, so historical
// orders stay stable when catalog prices change.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	SKU             string          `gorm:"column:sku;not null"`
	Qty             int             `gorm:"column:qty;not null"`
	CategoryAtTime  string          `gorm:"column:category_at_time;not null"`
	UnitCostAtTime  decimal.Decimal `gorm:"column:unit_cost_at_time;type:numeric(12,2);not null"`
	SellPriceAtTime decimal.Decimal `gorm:"column:sell_price_at_time;type:numeric(12,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
