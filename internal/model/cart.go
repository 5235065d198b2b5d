package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as seen by the coupon service.
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// ProductRef is the resolved product reference carried by a cart line.
type ProductRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	SKU  string    `json:"sku"`
}

// CartItem is a single cart line.
// DiscountedPrice, Name and SKU are set only once a coupon has discounted the line.
type CartItem struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"productId"`
	Product         *ProductRef      `json:"product,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	Quantity        int              `json:"quantity"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	Name            string           `json:"name,omitempty"`
	SKU             string           `json:"sku,omitempty"`
}

// EffectivePrice returns the discounted unit price, or the list price when
// the line has not been discounted.
func (i CartItem) EffectivePrice() decimal.Decimal {
	if i.DiscountedPrice != nil {
		return *i.DiscountedPrice
	}
	return i.Price
}

// AppliedCoupon is an audit entry recording one coupon application.
type AppliedCoupon struct {
	CouponID      uuid.UUID       `json:"couponId"`
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	DiscountType  DiscountType    `json:"discountType"`
	AppliedAt     time.Time       `json:"appliedAt"`
}

// Cart is a user's shopping cart.
type Cart struct {
	ID              uuid.UUID       `json:"id"`
	UserID          string          `json:"userId"`
	Items           []CartItem      `json:"items"`
	AppliedCoupons  []AppliedCoupon `json:"appliedCoupons"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	DiscountedTotal decimal.Decimal `json:"discountedTotal"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Recalculate recomputes both aggregates from scratch over all items.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	discounted := decimal.Zero
	for _, item := range c.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		total = total.Add(item.Price.Mul(qty))
		discounted = discounted.Add(item.EffectivePrice().Mul(qty))
	}
	c.TotalPrice = total
	c.DiscountedTotal = discounted
}
