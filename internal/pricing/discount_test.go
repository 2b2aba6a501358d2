package pricing

import (
	"testing"

	pkgerrors "github.com/twoflytrading/wholesale-backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestValidateDiscountAllowsZeroWithoutReason(t *testing.T) {
	if err := ValidateDiscount(dec("0"), nil, dec("100")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateDiscountRequiresReason(t *testing.T) {
	err := ValidateDiscount(dec("10"), nil, dec("100"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected %s, got %v", pkgerrors.CodeValidation, err)
	}

	if err := ValidateDiscount(dec("10"), strPtr("   "), dec("100")); err == nil {
		t.Fatalf("expected blank reason to be rejected")
	}
}

func TestValidateDiscountRejectsNegative(t *testing.T) {
	if err := ValidateDiscount(dec("-1"), strPtr("promo"), dec("100")); err == nil {
		t.Fatalf("expected negative discount to be rejected")
	}
}

func TestValidateDiscountRejectsExceedingSubtotal(t *testing.T) {
	err := ValidateDiscount(dec("150"), strPtr("promo"), dec("100"))
	if err == nil {
		t.Fatalf("expected oversized discount to be rejected")
	}

	// exactly equal to the subtotal is allowed
	if err := ValidateDiscount(dec("100"), strPtr("promo"), dec("100")); err != nil {
		t.Fatalf("unexpected error at boundary: %v", err)
	}
}
