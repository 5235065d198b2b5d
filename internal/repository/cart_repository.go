package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
	"github.com/fairyhunter13/cart-coupon-service/internal/service"
	"github.com/fairyhunter13/cart-coupon-service/pkg/database"
)

// CartRepository provides transactional data access for carts.
// Every method takes the caller's unit of work; the repository holds no state.
type CartRepository struct{}

// NewCartRepository creates a new CartRepository.
func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// GetByUserForUpdate loads the user's cart with its items' product references
// resolved, locking the cart row (SELECT FOR UPDATE) until the transaction completes.
// Returns service.ErrCartNotFound if the user has no cart.
func (r *CartRepository) GetByUserForUpdate(ctx context.Context, tx database.TxQuerier, userID string) (*model.Cart, error) {
	query := `SELECT id, user_id, total_price, discounted_total, applied_coupons, updated_at
		FROM carts WHERE user_id = $1 FOR UPDATE`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.TotalPrice,
		&cart.DiscountedTotal,
		&cart.AppliedCoupons,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart for user %s: %w", userID, err)
	}
	if cart.AppliedCoupons == nil {
		cart.AppliedCoupons = []model.AppliedCoupon{}
	}

	rows, err := tx.Query(ctx,
		`SELECT ci.id, ci.product_id, p.name, p.sku, ci.price, ci.quantity,
			ci.discounted_price, ci.name, ci.sku
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get items for cart %s: %w", cart.ID, err)
	}

	items, err := pgx.CollectRows(rows, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("scan cart items: %w", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	cart.Items = items

	return &cart, nil
}

// Save writes the cart aggregates, audit trail and the full item collection in
// a single batch. Items are replaced, keeping their ids and order.
// Must be called within the transaction that loaded the cart.
func (r *CartRepository) Save(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
	batch := &pgx.Batch{}
	batch.Queue(
		`UPDATE carts SET total_price = $2, discounted_total = $3, applied_coupons = $4, updated_at = $5
		WHERE id = $1`,
		cart.ID, cart.TotalPrice, cart.DiscountedTotal, cart.AppliedCoupons, cart.UpdatedAt)
	batch.Queue(`DELETE FROM cart_items WHERE cart_id = $1`, cart.ID)
	for i, item := range cart.Items {
		batch.Queue(
			`INSERT INTO cart_items (id, cart_id, position, product_id, price, quantity, discounted_price, name, sku)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, cart.ID, i, item.ProductID, item.Price, item.Quantity,
			item.DiscountedPrice, nullString(item.Name), nullString(item.SKU))
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("save cart %s (statement %d): %w", cart.ID, i, err)
		}
		if i == 0 && tag.RowsAffected() == 0 {
			_ = br.Close()
			return service.ErrCartNotFound
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (model.CartItem, error) {
	var (
		item       model.CartItem
		ref        model.ProductRef
		discounted *decimal.Decimal
		name, sku  *string
	)
	err := row.Scan(
		&item.ID, &item.ProductID, &ref.Name, &ref.SKU, &item.Price, &item.Quantity,
		&discounted, &name, &sku,
	)
	ref.ID = item.ProductID
	item.Product = &ref
	item.DiscountedPrice = discounted
	if name != nil {
		item.Name = *name
	}
	if sku != nil {
		item.SKU = *sku
	}
	return item, err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
