package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// Receivable tracks money owed to the business. Consumed as a summable
// outstanding balance only.
type Receivable struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Party      string              `gorm:"column:party;not null"`
	AmountDue  decimal.Decimal     `gorm:"column:amount_due;type:numeric(12,2);not null;default:0"`
	AmountPaid decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	Status     enums.FinanceStatus `gorm:"column:status;not null;default:'open'"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
