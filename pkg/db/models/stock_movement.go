package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// StockMovement is one signed entry in the append-only inventory ledger.
// On-hand for a SKU is the sum of its movements; the level is never stored
// as a bare counter.
type StockMovement struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU        string               `gorm:"column:sku;not null;index"`
	QtyChange  int                  `gorm:"column:qty_change;not null"`
	Reason     enums.MovementReason `gorm:"column:reason;not null"`
	RefOrderID *uuid.UUID           `gorm:"column:ref_order_id;type:uuid"`
	Note       *string              `gorm:"column:note"`
	CreatedBy  uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}
