package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// Profile mirrors the identity provider's view of a user. The order core
// reads it for role checks and commission rates and never writes it.
type Profile struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Role           enums.ActorRole `gorm:"column:role;not null;default:'staff'"`
	DisplayName    string          `gorm:"column:display_name;not null"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0.30"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
