package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
)

// ValidateDiscount enforces the discount rules against the current item
// subtotal. A nonzero discount needs a reason, and the amount may never
// exceed the subtotal; an oversized discount is rejected outright, not
// clamped.
func ValidateDiscount(amount decimal.Decimal, reason *string, itemsSubtotal decimal.Decimal) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount amount cannot be negative").
			WithDetails(map[string]string{"field": "discount_amount"})
	}
	if amount.IsPositive() {
		if reason == nil || strings.TrimSpace(*reason) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount reason is required when a discount is applied").
				WithDetails(map[string]string{"field": "discount_reason"})
		}
	}
	if amount.GreaterThan(itemsSubtotal) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount amount cannot exceed the item subtotal").
			WithDetails(map[string]string{
				"field":          "discount_amount",
				"items_subtotal": itemsSubtotal.StringFixed(2),
			})
	}
	return nil
}
