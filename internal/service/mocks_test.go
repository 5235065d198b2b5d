package service

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/cart-coupon-service/internal/model"
	"github.com/fairyhunter13/cart-coupon-service/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn      func(ctx context.Context, coupon *model.Coupon) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	getByCodeFn   func(ctx context.Context, code string) (*model.Coupon, error)
	getByCodeTxFn func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	listFn        func(ctx context.Context) ([]model.Coupon, error)
	updateFn      func(ctx context.Context, coupon *model.Coupon) error
	deleteFn      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCodeTx(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	if m.getByCodeTxFn != nil {
		return m.getByCodeTxFn(ctx, tx, code)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockProductRepository is a mock implementation of ProductRepositoryInterface.
type mockProductRepository struct {
	getByIDFn  func(ctx context.Context, id uuid.UUID) (*model.Product, error)
	getByIDsFn func(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return []model.Product{}, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// memCartStore is an in-memory cart store with transaction semantics: reads
// return copies, writes are staged per transaction and only become visible
// when that transaction commits.
type memCartStore struct {
	mu        sync.Mutex
	committed map[string]*model.Cart
	staged    map[database.TxQuerier]*model.Cart

	saveErr   error
	commitErr error
	commits   int
	rollbacks int
}

func newMemCartStore(carts ...*model.Cart) *memCartStore {
	s := &memCartStore{
		committed: make(map[string]*model.Cart),
		staged:    make(map[database.TxQuerier]*model.Cart),
	}
	for _, c := range carts {
		s.committed[c.UserID] = cloneCart(c)
	}
	return s
}

// Begin implements TxBeginner.
func (s *memCartStore) Begin(ctx context.Context) (pgx.Tx, error) {
	tx := &mockTx{}
	done := false
	tx.commitFn = func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.commitErr != nil {
			return s.commitErr
		}
		if c, ok := s.staged[tx]; ok {
			s.committed[c.UserID] = c
			delete(s.staged, tx)
		}
		s.commits++
		done = true
		return nil
	}
	tx.rollbackFn = func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !done {
			s.rollbacks++
		}
		delete(s.staged, tx)
		return nil
	}
	return tx, nil
}

func (s *memCartStore) GetByUserForUpdate(ctx context.Context, tx database.TxQuerier, userID string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.committed[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (s *memCartStore) Save(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.staged[tx] = cloneCart(cart)
	return nil
}

func (s *memCartStore) get(userID string) *model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.committed[userID])
}

func cloneCart(c *model.Cart) *model.Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = slices.Clone(c.Items)
	out.AppliedCoupons = slices.Clone(c.AppliedCoupons)
	return &out
}
