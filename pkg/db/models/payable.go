package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// Payable tracks money the business owes. Consumed as a summable outstanding
// balance only.
type Payable struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Party     string              `gorm:"column:party;not null"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	Status    enums.FinanceStatus `gorm:"column:status;not null;default:'open'"`
	Notes     *string             `gorm:"column:notes"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
