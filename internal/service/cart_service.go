package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/cart-coupon-service/internal/metrics"
	"github.com/fairyhunter13/cart-coupon-service/internal/model"
	"github.com/fairyhunter13/cart-coupon-service/pkg/database"
)

// CartRepositoryInterface defines the interface for transactional cart access.
type CartRepositoryInterface interface {
	GetByUserForUpdate(ctx context.Context, tx database.TxQuerier, userID string) (*model.Cart, error)
	Save(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CartService applies coupons to carts.
type CartService struct {
	pool       TxBeginner
	cartRepo   CartRepositoryInterface
	couponRepo CouponRepositoryInterface
	metrics    *metrics.Recorder
	now        func() time.Time
}

// NewCartService creates a new CartService with the given pool and repositories.
func NewCartService(pool *pgxpool.Pool, cartRepo CartRepositoryInterface, couponRepo CouponRepositoryInterface, rec *metrics.Recorder) *CartService {
	return NewCartServiceWithTxBeginner(pool, cartRepo, couponRepo, rec)
}

// NewCartServiceWithTxBeginner creates a CartService with a custom TxBeginner.
// Primarily used for testing.
func NewCartServiceWithTxBeginner(pool TxBeginner, cartRepo CartRepositoryInterface, couponRepo CouponRepositoryInterface, rec *metrics.Recorder) *CartService {
	return &CartService{
		pool:       pool,
		cartRepo:   cartRepo,
		couponRepo: couponRepo,
		metrics:    rec,
		now:        time.Now,
	}
}

// ApplyCoupon atomically applies a coupon to the user's cart and returns the
// updated cart. The cart read, coupon read and cart write share one
// transaction; the cart row stays locked (SELECT FOR UPDATE) until it ends, so
// concurrent applications for the same user serialize and both take effect.
//
// Only existence, the active flag and the end of the validity window are
// checked; the start of the window and the usage limit are not.
// Reapplying a coupon discounts the already discounted price again and adds
// another audit entry. Failed transactions are not retried.
//
// Returns:
//   - ErrCouponCodeRequired if code is empty
//   - ErrCartNotFound if the user has no cart
//   - ErrInvalidCouponCode if no coupon has this code
//   - ErrCouponExpired if the coupon is inactive or has ended
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (_ *model.Cart, err error) {
	defer func() { s.metrics.Application(outcomeOf(err)) }()

	if code == "" {
		return nil, ErrCouponCodeRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the user's cart with product references resolved
	cart, err := s.cartRepo.GetByUserForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart for update: %w", err)
	}

	// 2. Load the coupon by exact code
	coupon, err := s.couponRepo.GetByCodeTx(ctx, tx, code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrInvalidCouponCode
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	// 3. Check the coupon is still usable
	now := s.now()
	if !coupon.IsActive || coupon.ValidUntil.Before(now) {
		return nil, ErrCouponExpired
	}

	// 4. Discount covered items, record the application, recompute totals
	cart.Items = applyToItems(cart.Items, coupon)
	cart.AppliedCoupons = append(cart.AppliedCoupons, model.AppliedCoupon{
		CouponID:      coupon.ID,
		Code:          coupon.Code,
		DiscountValue: coupon.DiscountValue,
		DiscountType:  coupon.DiscountType,
		AppliedAt:     now.UTC(),
	})
	cart.Recalculate()
	cart.UpdatedAt = now.UTC()

	// 5. Persist inside the same transaction
	if err := s.cartRepo.Save(ctx, tx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cart, nil
}
