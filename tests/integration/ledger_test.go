package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/rukun/internal/adapter/repository/postgres"
	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
	"github.com/iho/rukun/tests/testutil"
)

func newLedgerUseCase(testDB *testutil.TestDB) *usecase.LedgerUseCase {
	txManager := postgres.NewTxManager(testDB.Pool)
	txnRepo := postgres.NewTransactionRepository(testDB.Pool)
	outboxRepo := postgres.NewOutboxRepository(testDB.Pool)
	idGen := postgres.NewULIDGenerator()

	return usecase.NewLedgerUseCase(txManager, txnRepo, outboxRepo, nil, idGen, usecase.NewSystemClock(), nil, nil)
}

func TestLedgerRecordAndSummarize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	ledgerUC := newLedgerUseCase(testDB)

	if _, err := ledgerUC.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Type:        domain.TransactionTypeIncome,
		Amount:      decimal.NewFromInt(150000),
		Description: "iuran warga",
		Category:    "dues",
	}); err != nil {
		t.Fatalf("failed to record income: %v", err)
	}

	if _, err := ledgerUC.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Type:        domain.TransactionTypeExpense,
		Amount:      decimal.NewFromInt(40000),
		Description: "perbaikan lampu jalan",
		Category:    "maintenance",
	}); err != nil {
		t.Fatalf("failed to record expense: %v", err)
	}

	summary, err := ledgerUC.Summarize(ctx, usecase.TransactionFilter{})
	if err != nil {
		t.Fatalf("failed to summarize: %v", err)
	}

	if !summary.Income.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected income 150000, got %s", summary.Income)
	}
	if !summary.Expense.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("expected expense 40000, got %s", summary.Expense)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(110000)) {
		t.Errorf("expected balance 110000, got %s", summary.Balance)
	}

	// Category filter only folds matching rows.
	filtered, err := ledgerUC.Summarize(ctx, usecase.TransactionFilter{Category: "dues"})
	if err != nil {
		t.Fatalf("failed to summarize filtered: %v", err)
	}
	if !filtered.Balance.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("expected dues balance 150000, got %s", filtered.Balance)
	}
}

func TestLedgerRejectsInvalidEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	ledgerUC := newLedgerUseCase(testDB)

	if _, err := ledgerUC.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Type:   domain.TransactionType("loan"),
		Amount: decimal.NewFromInt(1000),
	}); !errors.Is(err, domain.ErrInvalidTransactionType) {
		t.Fatalf("expected ErrInvalidTransactionType, got %v", err)
	}

	if _, err := ledgerUC.RecordTransaction(ctx, usecase.RecordTransactionInput{
		Type:   domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(-500),
	}); !errors.Is(err, domain.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	// Nothing from the rejected attempts reaches the ledger.
	transactions, err := ledgerUC.ListTransactions(ctx, usecase.TransactionFilter{})
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(transactions))
	}
}

func TestLedgerListOrderAndFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	testDB.CreateTestTransaction(ctx, domain.TransactionTypeIncome, decimal.NewFromInt(1000), "dues")
	testDB.CreateTestTransaction(ctx, domain.TransactionTypeExpense, decimal.NewFromInt(300), "maintenance")
	testDB.CreateTestTransaction(ctx, domain.TransactionTypeIncome, decimal.NewFromInt(2000), "donation")

	ledgerUC := newLedgerUseCase(testDB)

	income := domain.TransactionTypeIncome
	transactions, err := ledgerUC.ListTransactions(ctx, usecase.TransactionFilter{Type: &income})
	if err != nil {
		t.Fatalf("failed to list income: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 income entries, got %d", len(transactions))
	}
	for _, txn := range transactions {
		if txn.Type != domain.TransactionTypeIncome {
			t.Fatalf("expected only income entries, got %s", txn.Type)
		}
	}

	all, err := ledgerUC.ListTransactions(ctx, usecase.TransactionFilter{})
	if err != nil {
		t.Fatalf("failed to list all: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Date.Before(all[i].Date) {
			t.Fatalf("expected most recent first, got %v before %v", all[i-1].Date, all[i].Date)
		}
	}
}
