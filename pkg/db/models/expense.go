package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is an operational expense row. The order core only sums these for
// the dashboard; row editing lives outside this service.
type Expense struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExpenseDate time.Time       `gorm:"column:expense_date;type:date;not null;index"`
	Category    string          `gorm:"column:category;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	Notes       *string         `gorm:"column:notes"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
