package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/internal/pricing"
	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

// Actor identifies the authenticated caller for order operations.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// OrderItemInput is one requested order line. Quantities below one are
// coerced up to one rather than rejected.
type OrderItemInput struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// CreateOrderInput captures the order intake payload. Region and shipping
// only apply to the online channel; other channels have them forced empty
// regardless of what the caller sends.
type CreateOrderInput struct {
	Channel        string           `json:"channel"`
	CustomerName   string           `json:"customer_name"`
	ProfileLink    *string          `json:"profile_link"`
	PhoneNumber    *string          `json:"phone_number"`
	Notes          *string          `json:"notes"`
	Region         *string          `json:"region"`
	ShippingPaid   decimal.Decimal  `json:"shipping_paid"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	DiscountReason *string          `json:"discount_reason"`
	Items          []OrderItemInput `json:"items"`
}

// UpdateOrderInput carries partial order edits. Nil fields are untouched.
type UpdateOrderInput struct {
	Status         *string          `json:"status"`
	CustomerName   *string          `json:"customer_name"`
	ProfileLink    *string          `json:"profile_link"`
	PhoneNumber    *string          `json:"phone_number"`
	Notes          *string          `json:"notes"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	DiscountReason *string          `json:"discount_reason"`
}

// ReplaceItemsInput carries the full replacement line set.
type ReplaceItemsInput struct {
	Items []OrderItemInput `json:"items"`
}

// ListFilters describe the inputs supported by the order list.
type ListFilters struct {
	Channel   *enums.Channel
	Status    *enums.OrderStatus
	CreatedBy *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// OrderDetail couples the stored order with its derived financials. The
// financials are recomputed on every read, never persisted.
type OrderDetail struct {
	Order      models.Order       `json:"order"`
	Financials pricing.Financials `json:"financials"`
}
