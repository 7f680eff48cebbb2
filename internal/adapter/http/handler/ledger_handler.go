package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/rukun/internal/adapter/http/dto"
	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	RecordTransaction(ctx context.Context, input usecase.RecordTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error)
	Summarize(ctx context.Context, filter usecase.TransactionFilter) (domain.Summary, error)
}

// TallyService defines the behavior needed for consistency checks.
type TallyService interface {
	CheckConsistency(ctx context.Context) (bool, []usecase.TallyMismatch, error)
}

// LedgerHandler handles finance ledger HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	tallyUC  TallyService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, tallyUC TallyService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, tallyUC: tallyUC}
}

// Record appends a transaction to the ledger.
func (h *LedgerHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.RecordTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a single ledger entry.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.GetTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List lists ledger entries, most recent first.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	filter.Limit = parseIntQuery(r, "limit", 50)
	filter.Offset = parseIntQuery(r, "offset", 0)

	transactions, err := h.ledgerUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Total:        int64(len(transactions)),
	})
}

// Summary returns income, expense and balance for the filtered ledger.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.ledgerUC.Summarize(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to summarize ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Consistency verifies poll tallies against the vote ledger.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	consistent, mismatches, err := h.tallyUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromMismatches(consistent, mismatches))
}

func parseTransactionFilter(w http.ResponseWriter, r *http.Request) (usecase.TransactionFilter, bool) {
	var filter usecase.TransactionFilter

	if typ := r.URL.Query().Get("type"); typ != "" {
		t := domain.TransactionType(typ)
		if t != domain.TransactionTypeIncome && t != domain.TransactionTypeExpense {
			writeError(w, http.StatusBadRequest, "invalid transaction type", typ)
			return filter, false
		}
		filter.Type = &t
	}

	filter.Category = r.URL.Query().Get("category")

	return filter, true
}
