package service

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies one coupon rule to a unit price.
// The result is floored at zero and rounded to cents. An unknown discount
// type leaves the price unchanged.
func DiscountedPrice(price decimal.Decimal, discountType model.DiscountType, value decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch discountType {
	case model.DiscountPercentage:
		out = price.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case model.DiscountFixed:
		out = price.Sub(value)
	default:
		return price
	}
	if out.IsNegative() {
		out = decimal.Zero
	}
	return out.Round(2)
}

// applyToItems discounts every item covered by the coupon, starting from the
// item's current effective price, and returns a new slice. Items outside the
// coupon's applicability set are copied unchanged.
func applyToItems(items []model.CartItem, coupon *model.Coupon) []model.CartItem {
	updated := make([]model.CartItem, len(items))
	for i, item := range items {
		if coupon.AppliesTo(item.ProductID) {
			price := DiscountedPrice(item.EffectivePrice(), coupon.DiscountType, coupon.DiscountValue)
			item.DiscountedPrice = &price
			if item.Product != nil {
				item.Name = item.Product.Name
				item.SKU = item.Product.SKU
			}
		}
		updated[i] = item
	}
	return updated
}
