package domain

import "github.com/shopspring/decimal"

// Summary is derived from a sequence of transactions. It is never stored
// as authoritative state: the transaction ledger is the single source of
// truth and any cached summary must be recomputable from it.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// Summarize folds a transaction sequence into income, expense and net
// balance. Pure function of its input.
func Summarize(transactions []*Transaction) Summary {
	income := decimal.Zero
	expense := decimal.Zero

	for _, tx := range transactions {
		switch tx.Type {
		case TransactionTypeIncome:
			income = income.Add(tx.Amount)
		case TransactionTypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}

	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// TransactionPredicate selects transactions for Filter.
type TransactionPredicate func(*Transaction) bool

// ByType matches transactions of the given type.
func ByType(typ TransactionType) TransactionPredicate {
	return func(t *Transaction) bool { return t.Type == typ }
}

// ByCategory matches transactions of the given category.
func ByCategory(category string) TransactionPredicate {
	return func(t *Transaction) bool { return t.Category == category }
}

// Filter returns the subsequence matching the predicate, preserving the
// ledger's order (most recent first as maintained by the repository).
func Filter(transactions []*Transaction, pred TransactionPredicate) []*Transaction {
	result := make([]*Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if pred(tx) {
			result = append(result, tx)
		}
	}

	return result
}
