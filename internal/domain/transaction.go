package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// DefaultCategory is assigned when a transaction carries no category.
const DefaultCategory = "general"

// Transaction is an immutable entry in the community ledger. Corrections
// are new offsetting transactions, not edits.
type Transaction struct {
	ID          string
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
}

// Validate checks the transaction invariants before it is recorded.
func (t *Transaction) Validate() error {
	if t.Type != TransactionTypeIncome && t.Type != TransactionTypeExpense {
		return ErrInvalidTransactionType
	}

	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// Normalize fills defaults on a transaction about to be recorded.
func (t *Transaction) Normalize() {
	if t.Category == "" {
		t.Category = DefaultCategory
	}
}
