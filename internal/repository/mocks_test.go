package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockRows implements pgx.Rows. Each entry of scans fills one row.
type mockRows struct {
	scans     []func(dest ...any) error
	index     int
	errOnRows error
	closed    bool
}

func (m *mockRows) Close() { m.closed = true }

func (m *mockRows) Err() error {
	return m.errOnRows
}

func (m *mockRows) Next() bool {
	if m.index < len(m.scans) {
		m.index++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...any) error {
	if m.index > 0 && m.index <= len(m.scans) {
		return m.scans[m.index-1](dest...)
	}
	return nil
}

func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// mockPool implements PoolInterface for testing.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

// mockTxQuerier implements database.TxQuerier for testing transactional methods.
type mockTxQuerier struct {
	mockPool
	sendBatchFn func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (m *mockTxQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if m.sendBatchFn != nil {
		return m.sendBatchFn(ctx, b)
	}
	return &mockBatchResults{}
}

// mockBatchResults implements pgx.BatchResults. Exec returns tags and errs in
// order; missing entries default to "UPDATE 1" and nil.
type mockBatchResults struct {
	tags     []pgconn.CommandTag
	errs     []error
	index    int
	closeErr error
	closed   bool
}

func (m *mockBatchResults) Exec() (pgconn.CommandTag, error) {
	i := m.index
	m.index++
	tag := pgconn.NewCommandTag("UPDATE 1")
	if i < len(m.tags) {
		tag = m.tags[i]
	}
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return tag, err
}

func (m *mockBatchResults) Query() (pgx.Rows, error) { return &mockRows{}, nil }
func (m *mockBatchResults) QueryRow() pgx.Row         { return &mockRow{} }

func (m *mockBatchResults) Close() error {
	m.closed = true
	return m.closeErr
}
