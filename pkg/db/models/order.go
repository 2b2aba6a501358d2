package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// Order is the persisted order record. Non-online channels always carry a
// nil region and zero shipping/courier amounts; the channel is authoritative.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderCode         string            `gorm:"column:order_code;not null;uniqueIndex"`
	Channel           enums.Channel     `gorm:"column:channel;not null"`
	Status            enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	CustomerName      string            `gorm:"column:customer_name;not null"`
	ProfileLink       *string           `gorm:"column:profile_link"`
	PhoneNumber       *string           `gorm:"column:phone_number"`
	Notes             *string           `gorm:"column:notes"`
	Region            *enums.Region     `gorm:"column:region"`
	ShippingPaid      decimal.Decimal   `gorm:"column:shipping_paid;type:numeric(12,2);not null;default:0"`
	CourierCost       decimal.Decimal   `gorm:"column:courier_cost;type:numeric(12,2);not null;default:0"`
	DiscountAmount    decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	DiscountReason    *string           `gorm:"column:discount_reason"`
	CreatedBy         uuid.UUID         `gorm:"column:created_by;type:uuid;not null;index"`
	DiscountUpdatedBy *uuid.UUID        `gorm:"column:discount_updated_by;type:uuid"`
	DiscountUpdatedAt *time.Time        `gorm:"column:discount_updated_at"`
	Items             []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
