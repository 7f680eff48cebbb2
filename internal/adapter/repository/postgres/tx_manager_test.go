package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/rukun/internal/usecase"
)

func TestTxManagerCommitAndRollback(t *testing.T) {
	cases := []struct {
		name   string
		expect func(pgxmock.PgxPoolIface)
		finish func(usecase.Transaction) error
	}{
		{
			name:   "commit",
			expect: func(p pgxmock.PgxPoolIface) { p.ExpectBegin(); p.ExpectCommit() },
			finish: func(tx usecase.Transaction) error { return tx.Commit(context.Background()) },
		},
		{
			name:   "rollback",
			expect: func(p pgxmock.PgxPoolIface) { p.ExpectBegin(); p.ExpectRollback() },
			finish: func(tx usecase.Transaction) error { return tx.Rollback(context.Background()) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			tc.expect(mockPool)

			manager := newTxManagerWithPool(mockPool)
			tx, err := manager.Begin(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := tc.finish(tx); err != nil {
				t.Fatalf("%s failed: %v", tc.name, err)
			}
			assertExpectations(t, mockPool)
		})
	}
}

func TestTxManagerBeginErrorIsWrapped(t *testing.T) {
	mockPool := newMockPool(t)
	beginErr := errors.New("begin failed")
	mockPool.ExpectBegin().WillReturnError(beginErr)

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if tx != nil {
		t.Fatalf("expected nil tx, got %v", tx)
	}
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected wrapped begin error, got %v", err)
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
