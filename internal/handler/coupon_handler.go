package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
)

// CouponServiceInterface defines the interface for the coupon registry.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	List(ctx context.Context) ([]model.CouponResponse, error)
	GetByID(ctx context.Context, id string) (*model.CouponResponse, error)
	Edit(ctx context.Context, id string, req *model.EditCouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id string) error
	Verify(ctx context.Context, code, productID string) error
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// CreateCoupon handles POST /api/coupons.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	coupon, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return failWith(c, err)
	}

	log.Info().
		Str("coupon_id", coupon.ID.String()).
		Str("code", coupon.Code).
		Str("discount_type", string(coupon.DiscountType)).
		Msg("coupon created")
	return respond(c, fiber.StatusCreated, coupon, "coupon created successfully")
}

// ListCoupons handles GET /api/coupons.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.Context())
	if err != nil {
		return failWith(c, err)
	}
	return respond(c, fiber.StatusOK, coupons, "coupons retrieved successfully")
}

// GetCoupon handles GET /api/coupons/:id.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	coupon, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return failWith(c, err)
	}
	return respond(c, fiber.StatusOK, coupon, "coupon retrieved successfully")
}

// EditCoupon handles PATCH /api/coupons/:id. Only fields present in the body change.
func (h *CouponHandler) EditCoupon(c *fiber.Ctx) error {
	var req model.EditCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	coupon, err := h.service.Edit(c.Context(), c.Params("id"), &req)
	if err != nil {
		return failWith(c, err)
	}

	log.Info().Str("coupon_id", coupon.ID.String()).Msg("coupon updated")
	return respond(c, fiber.StatusOK, coupon, "coupon updated successfully")
}

// DeleteCoupon handles DELETE /api/coupons/:id.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(c.Context(), id); err != nil {
		return failWith(c, err)
	}

	log.Info().Str("coupon_id", id).Msg("coupon deleted")
	return respond(c, fiber.StatusOK, nil, "coupon deleted successfully")
}

// VerifyCoupon handles GET /api/coupons/verify?couponCode=&productId=.
func (h *CouponHandler) VerifyCoupon(c *fiber.Ctx) error {
	if err := h.service.Verify(c.Context(), c.Query("couponCode"), c.Query("productId")); err != nil {
		return failWith(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "coupon is valid")
}
