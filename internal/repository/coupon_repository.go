package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
	"github.com/fairyhunter13/cart-coupon-service/internal/service"
	"github.com/fairyhunter13/cart-coupon-service/pkg/database"
)

const couponColumns = `id, code, discount_type, discount_value, product_ids,
	valid_from, valid_until, usage_limit, is_active, created_at, updated_at`

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if a coupon with the same code already exists.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (`+couponColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		coupon.ID, coupon.Code, string(coupon.DiscountType), coupon.DiscountValue, productIDs(coupon.ProductIDs),
		coupon.ValidFrom, coupon.ValidUntil, coupon.UsageLimit, coupon.IsActive, coupon.CreatedAt, coupon.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByID retrieves a coupon by its id.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by id %s: %w", id, err)
	}
	return &coupon, nil
}

// GetByCode retrieves a coupon by its exact, case-sensitive code.
// Returns nil, nil if the coupon is not found.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return &coupon, nil
}

// GetByCodeTx retrieves a coupon by code inside a transaction and takes a
// share lock, so the coupon cannot be edited or deleted until the transaction ends.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByCodeTx(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	coupon, err := scanCoupon(tx.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1 FOR SHARE`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return &coupon, nil
}

// List returns all coupons, oldest first.
// On success, returns an empty slice (not nil) when no coupons exist.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	coupons, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Coupon, error) {
		return scanCoupon(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan coupons: %w", err)
	}
	if coupons == nil {
		coupons = []model.Coupon{}
	}
	return coupons, nil
}

// Update overwrites every mutable column of an existing coupon.
// Returns service.ErrCouponExists on a code collision and
// service.ErrCouponNotFound if the coupon was deleted in the meantime.
func (r *CouponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons SET code = $2, discount_value = $3, product_ids = $4,
			valid_from = $5, valid_until = $6, usage_limit = $7, updated_at = $8
		WHERE id = $1`,
		coupon.ID, coupon.Code, coupon.DiscountValue, productIDs(coupon.ProductIDs),
		coupon.ValidFrom, coupon.ValidUntil, coupon.UsageLimit, coupon.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrCouponExists
		}
		return fmt.Errorf("update coupon %s: %w", coupon.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// Delete removes a coupon by id.
// Returns service.ErrCouponNotFound if nothing was deleted.
func (r *CouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

func scanCoupon(row pgx.Row) (model.Coupon, error) {
	var (
		c            model.Coupon
		discountType string
	)
	err := row.Scan(
		&c.ID, &c.Code, &discountType, &c.DiscountValue, &c.ProductIDs,
		&c.ValidFrom, &c.ValidUntil, &c.UsageLimit, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	c.DiscountType = model.DiscountType(discountType)
	if c.ProductIDs == nil {
		c.ProductIDs = []uuid.UUID{}
	}
	return c, err
}

// productIDs makes sure an absent set is stored as '{}' rather than NULL.
func productIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
