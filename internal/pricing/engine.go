package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
)

// Financials is the derived money view of a single order. Every field is
// computed from the order row plus its item snapshots; nothing here is stored.
type Financials struct {
	ItemsSubtotal      decimal.Decimal `json:"items_subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	ItemsAfterDiscount decimal.Decimal `json:"items_after_discount"`
	ItemsCOGS          decimal.Decimal `json:"items_cogs"`
	ItemsProfit        decimal.Decimal `json:"items_profit"`
	ShippingProfit     decimal.Decimal `json:"shipping_profit"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	Commission         decimal.Decimal `json:"commission"`
}

// Compute derives the financials for an order from its item snapshots.
// Item math uses the at-time cost and price columns, never the live catalog.
// Shipping profit exists only on the online channel and is floored at zero;
// a courier run that costs more than the customer paid earns no commission
// but does not claw anything back.
func Compute(order *models.Order, items []models.OrderItem, commissionRate decimal.Decimal) Financials {
	subtotal := decimal.Zero
	cogs := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Qty))
		subtotal = subtotal.Add(item.SellPriceAtTime.Mul(qty))
		cogs = cogs.Add(item.UnitCostAtTime.Mul(qty))
	}

	afterDiscount := subtotal.Sub(order.DiscountAmount)
	if afterDiscount.IsNegative() {
		afterDiscount = decimal.Zero
	}

	itemsProfit := afterDiscount.Sub(cogs)

	shippingProfit := decimal.Zero
	if order.Channel.HasShipping() {
		shippingProfit = order.ShippingPaid.Sub(order.CourierCost)
		if shippingProfit.IsNegative() {
			shippingProfit = decimal.Zero
		}
	}

	return Financials{
		ItemsSubtotal:      subtotal,
		DiscountAmount:     order.DiscountAmount,
		ItemsAfterDiscount: afterDiscount,
		ItemsCOGS:          cogs,
		ItemsProfit:        itemsProfit,
		ShippingProfit:     shippingProfit,
		GrossProfit:        itemsProfit.Add(shippingProfit),
		Commission:         shippingProfit.Mul(commissionRate),
	}
}

// ItemsSubtotal sums sell_price_at_time * qty across the given lines.
func ItemsSubtotal(items []models.OrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.SellPriceAtTime.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return subtotal
}
