package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/cart-coupon-service/internal/metrics"
	"github.com/fairyhunter13/cart-coupon-service/internal/model"
	"github.com/fairyhunter13/cart-coupon-service/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByCodeTx(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepositoryInterface defines the interface for product lookups.
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
}

// CouponService provides the coupon registry: administrative CRUD and
// verification. None of its operations are transactional.
type CouponService struct {
	couponRepo  CouponRepositoryInterface
	productRepo ProductRepositoryInterface
	metrics     *metrics.Recorder
	now         func() time.Time
}

// NewCouponService creates a new CouponService with the given repositories.
// rec may be nil.
func NewCouponService(couponRepo CouponRepositoryInterface, productRepo ProductRepositoryInterface, rec *metrics.Recorder) *CouponService {
	return &CouponService{
		couponRepo:  couponRepo,
		productRepo: productRepo,
		metrics:     rec,
		now:         time.Now,
	}
}

// Create validates and stores a new coupon, returning the stored record.
// Returns ErrMissingFields, ErrInvalidDiscountValue, ErrInvalidWindow or ErrCouponExists
// when the request is rejected.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (_ *model.Coupon, err error) {
	defer func() { s.metrics.RegistryOp("create", outcomeOf(err)) }()

	// Required fields; the handler checks these too
	if req == nil || req.Code == "" || req.DiscountType == "" || req.DiscountValue == nil ||
		req.ValidFrom == nil || req.ValidUntil == nil || req.UsageLimit == nil {
		return nil, ErrMissingFields
	}
	if err := checkDiscountValue(req.DiscountType, *req.DiscountValue); err != nil {
		return nil, err
	}
	if err := checkUsageLimit(*req.UsageLimit); err != nil {
		return nil, err
	}
	if !req.ValidFrom.Before(*req.ValidUntil) {
		return nil, ErrInvalidWindow
	}

	existing, err := s.couponRepo.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("check coupon code: %w", err)
	}
	if existing != nil {
		return nil, ErrCouponExists
	}

	now := storedTime(s.now())
	coupon := &model.Coupon{
		ID:            uuid.New(),
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: *req.DiscountValue,
		ProductIDs:    req.ProductIDs,
		ValidFrom:     storedTime(*req.ValidFrom),
		ValidUntil:    storedTime(*req.ValidUntil),
		UsageLimit:    *req.UsageLimit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if coupon.ProductIDs == nil {
		coupon.ProductIDs = []uuid.UUID{}
	}

	// The unique index still maps a concurrent duplicate to ErrCouponExists
	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// List returns every coupon with its applicable products resolved to names.
func (s *CouponService) List(ctx context.Context) (_ []model.CouponResponse, err error) {
	defer func() { s.metrics.RegistryOp("list", outcomeOf(err)) }()

	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	// One product lookup for the union of all applicability sets
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, c := range coupons {
		for _, id := range c.ProductIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	names, err := s.productNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]model.CouponResponse, len(coupons))
	for i := range coupons {
		resp[i] = toCouponResponse(&coupons[i], names)
	}
	return resp, nil
}

// GetByID retrieves a coupon with its applicable products resolved to names.
// Returns ErrInvalidID for a malformed id and ErrCouponNotFound if absent.
func (s *CouponService) GetByID(ctx context.Context, rawID string) (_ *model.CouponResponse, err error) {
	defer func() { s.metrics.RegistryOp("get", outcomeOf(err)) }()

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	names, err := s.productNames(ctx, coupon.ProductIDs)
	if err != nil {
		return nil, err
	}
	resp := toCouponResponse(coupon, names)
	return &resp, nil
}

// Edit applies a partial update to a coupon. Only fields present in req are
// written. The validity window is replaced only when both bounds are present;
// a single bound is ignored.
func (s *CouponService) Edit(ctx context.Context, rawID string, req *model.EditCouponRequest) (_ *model.Coupon, err error) {
	defer func() { s.metrics.RegistryOp("edit", outcomeOf(err)) }()

	if req == nil {
		return nil, ErrInvalidRequest
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	if req.Code != nil && *req.Code != coupon.Code {
		existing, err := s.couponRepo.GetByCode(ctx, *req.Code)
		if err != nil {
			return nil, fmt.Errorf("check coupon code: %w", err)
		}
		if existing != nil && existing.ID != coupon.ID {
			return nil, ErrCouponExists
		}
		coupon.Code = *req.Code
	}

	if req.ValidFrom != nil && req.ValidUntil != nil {
		if !req.ValidFrom.Before(*req.ValidUntil) {
			return nil, ErrInvalidWindow
		}
		coupon.ValidFrom = storedTime(*req.ValidFrom)
		coupon.ValidUntil = storedTime(*req.ValidUntil)
	}

	if req.DiscountValue != nil {
		if err := checkDiscountValue(coupon.DiscountType, *req.DiscountValue); err != nil {
			return nil, err
		}
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.UsageLimit != nil {
		if err := checkUsageLimit(*req.UsageLimit); err != nil {
			return nil, err
		}
		coupon.UsageLimit = *req.UsageLimit
	}
	if req.ProductIDs != nil {
		coupon.ProductIDs = *req.ProductIDs
		if coupon.ProductIDs == nil {
			coupon.ProductIDs = []uuid.UUID{}
		}
	}

	coupon.UpdatedAt = storedTime(s.now())
	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Delete removes a coupon.
// Returns ErrInvalidID for a malformed id and ErrCouponNotFound if absent.
func (s *CouponService) Delete(ctx context.Context, rawID string) (err error) {
	defer func() { s.metrics.RegistryOp("delete", outcomeOf(err)) }()

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	return s.couponRepo.Delete(ctx, id)
}

// Verify checks, without mutating anything, that the coupon exists, the
// product exists, the product is covered by the coupon and that now lies
// within [validFrom, validUntil].
func (s *CouponService) Verify(ctx context.Context, code, rawProductID string) (err error) {
	defer func() { s.metrics.RegistryOp("verify", outcomeOf(err)) }()

	if code == "" || rawProductID == "" {
		return ErrInvalidRequest
	}
	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		return ErrInvalidProductID
	}

	var (
		coupon  *model.Coupon
		product *model.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coupon, err = s.couponRepo.GetByCode(gctx, code)
		if err != nil {
			return fmt.Errorf("get coupon: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		product, err = s.productRepo.GetByID(gctx, productID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if coupon == nil {
		return ErrCouponNotFound
	}
	if product == nil {
		return ErrProductNotFound
	}
	if !coupon.AppliesTo(product.ID) {
		return ErrCouponNotApplicable
	}

	now := s.now()
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return ErrCouponOutOfWindow
	}
	return nil
}

// productNames resolves product ids to names in a single query.
func (s *CouponService) productNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func toCouponResponse(c *model.Coupon, names map[uuid.UUID]string) model.CouponResponse {
	products := make([]model.ProductSummary, 0, len(c.ProductIDs))
	for _, id := range c.ProductIDs {
		if name, ok := names[id]; ok {
			products = append(products, model.ProductSummary{ID: id, Name: name})
		}
	}
	return model.CouponResponse{Coupon: c, Products: products}
}

// maxDiscountValue is the first value NUMERIC(12,2) cannot hold.
var maxDiscountValue = decimal.New(1, 10)

// checkDiscountValue accepts what NUMERIC(12,2) stores without rounding.
func checkDiscountValue(t model.DiscountType, v decimal.Decimal) error {
	if !v.IsPositive() || !v.Equal(v.Round(2)) || v.GreaterThanOrEqual(maxDiscountValue) {
		return ErrInvalidDiscountValue
	}
	if t == model.DiscountPercentage && v.GreaterThan(hundred) {
		return ErrInvalidDiscountValue
	}
	return nil
}

func checkUsageLimit(n int) error {
	if n < 1 || n > math.MaxInt32 {
		return ErrInvalidUsageLimit
	}
	return nil
}

// storedTime drops the precision TIMESTAMPTZ does not keep, so the returned
// record matches what a later read returns.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// outcomeOf labels an operation result for metrics.
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return KindOf(err).String()
}
