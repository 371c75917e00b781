package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockQuerier is a test mock for querier
type MockQuerier struct {
	calls        []call
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

type call struct {
	sql  string
	args []any
}

func (m *MockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.calls = append(m.calls, call{sql: sql, args: args})
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *MockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.calls = append(m.calls, call{sql: sql, args: args})
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return MockRow{Err: pgx.ErrNoRows}
}

// MockRow is a test mock for pgx.Row
type MockRow struct {
	Value string
	Err   error
}

func (r MockRow) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	if p, ok := dest[0].(*string); ok {
		*p = r.Value
	}
	return nil
}

func newTestStore(q *MockQuerier) *KVStore {
	s := NewKVStore(nil, nil)
	s.db = q
	return s
}
