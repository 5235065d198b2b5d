package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
)

// CartServiceInterface defines the interface for coupon application.
type CartServiceInterface interface {
	ApplyCoupon(ctx context.Context, userID, code string) (*model.Cart, error)
}

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

// ApplyCoupon handles POST /api/cart/apply-coupon for the authenticated user.
// Must be mounted behind RequireUser.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req model.ApplyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	userID := UserID(c)
	cart, err := h.service.ApplyCoupon(c.Context(), userID, req.CouponCode)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("code", req.CouponCode).Msg("coupon application rejected")
		return failWith(c, err)
	}

	log.Info().
		Str("user_id", userID).
		Str("code", req.CouponCode).
		Str("discounted_total", cart.DiscountedTotal.StringFixed(2)).
		Int("applied_count", len(cart.AppliedCoupons)).
		Msg("coupon applied")
	return respond(c, fiber.StatusOK, cart, "coupon applied successfully")
}
