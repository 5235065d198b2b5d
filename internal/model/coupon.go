package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount rules.
type DiscountType string

const (
	// DiscountPercentage takes value percent off the unit price.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off the unit price.
	DiscountFixed DiscountType = "fixed"
)

// Coupon represents a coupon in the system
type Coupon struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	ProductIDs    []uuid.UUID     `json:"productIds"`
	ValidFrom     time.Time       `json:"validFrom"`
	ValidUntil    time.Time       `json:"validUntil"`
	UsageLimit    int             `json:"usageLimit"` // Stored only, never enforced
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// AppliesTo reports whether productID is in the coupon's applicability set.
func (c *Coupon) AppliesTo(productID uuid.UUID) bool {
	return slices.Contains(c.ProductIDs, productID)
}

// ProductSummary is the minimal product data shown alongside a coupon.
type ProductSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CouponResponse is the API response DTO for coupon reads.
// Products holds the resolved applicability set; unknown ids are dropped.
type CouponResponse struct {
	*Coupon
	Products []ProductSummary `json:"products"`
}

// CreateCouponRequest is the DTO for creating a coupon
type CreateCouponRequest struct {
	Code          string           `json:"code" validate:"required,notblank,max=64"`
	DiscountType  DiscountType     `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue *decimal.Decimal `json:"discountValue" validate:"required,gt=0,cents"`
	ProductIDs    []uuid.UUID      `json:"productIds"`
	ValidFrom     *time.Time       `json:"validFrom" validate:"required"`
	ValidUntil    *time.Time       `json:"validUntil" validate:"required"`
	UsageLimit    *int             `json:"usageLimit" validate:"required,gte=1,lte=2147483647"`
}

// EditCouponRequest is the DTO for a partial coupon update.
// A nil field was absent from the request and leaves the stored value alone.
type EditCouponRequest struct {
	Code          *string          `json:"code" validate:"omitnil,notblank,max=64"`
	DiscountValue *decimal.Decimal `json:"discountValue" validate:"omitnil,gt=0,cents"`
	ValidFrom     *time.Time       `json:"validFrom"`
	ValidUntil    *time.Time       `json:"validUntil"`
	UsageLimit    *int             `json:"usageLimit" validate:"omitnil,gte=1,lte=2147483647"`
	ProductIDs    *[]uuid.UUID     `json:"productIds"`
}

// ApplyCouponRequest is the DTO for applying a coupon to the caller's cart.
// Code is checked by the service so the empty-code failure is uniform.
type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode" validate:"max=64"`
}
