package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
)

// ProductRepository provides read access to the product catalog.
type ProductRepository struct {
	pool PoolInterface
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a new ProductRepository with a custom pool interface.
// This is primarily used for testing.
func NewProductRepositoryWithPool(pool PoolInterface) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID retrieves a product by id.
// Returns nil, nil if the product is not found.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.pool.QueryRow(ctx, `SELECT id, name, sku, price FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns the products matching any of the given ids in one query.
// Unknown ids are simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, sku, price FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		var p model.Product
		err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Price)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return products, nil
}
