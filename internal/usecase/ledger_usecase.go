package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/infrastructure/metrics"
)

// LedgerUseCase handles the community finance ledger.
type LedgerUseCase struct {
	txManager  TransactionManager
	txnRepo    TransactionRepository
	outboxRepo OutboxRepository
	cache      Cache
	idGen      IDGenerator
	clock      Clock
	auditRepo  AuditRepository
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. auditRepo and metrics are
// optional; pass nil to disable them.
func NewLedgerUseCase(
	txManager TransactionManager,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	clock Clock,
	auditRepo AuditRepository,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:  txManager,
		txnRepo:    txnRepo,
		outboxRepo: outboxRepo,
		cache:      cache,
		idGen:      idGen,
		clock:      clock,
		auditRepo:  auditRepo,
		metrics:    m,
	}
}

// RecordTransactionInput represents input for recording a transaction.
type RecordTransactionInput struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        *time.Time
	ActorID     string
}

// RecordTransaction appends a transaction to the ledger. The ledger is
// append-only; a mistaken entry is corrected by a new offsetting entry.
func (uc *LedgerUseCase) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	now := uc.clock.Now()

	date := now
	if input.Date != nil {
		date = *input.Date
	}

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		Category:    input.Category,
		Date:        date,
		CreatedAt:   now,
	}
	txn.Normalize()

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(txn.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(txn.Description); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	err = uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionRecorded,
		Payload: domain.MarshalState(domain.TransactionRecordedEvent{
			TransactionID: txn.ID,
			Type:          string(txn.Type),
			Amount:        txn.Amount.String(),
			Category:      txn.Category,
		}),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// Cached summaries are stale now. Dropping the key is best effort:
	// the TTL bounds staleness if the delete fails.
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, SummaryCacheKey); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate summary cache")
		}
	}

	if uc.auditRepo != nil {
		auditErr := uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       actorOrSystem(input.ActorID),
			Action:       string(domain.AuditActionTxRecord),
			ResourceType: "transaction",
			ResourceID:   txn.ID,
			AfterState:   domain.MarshalState(txn),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
		if auditErr != nil {
			log.Warn().Err(auditErr).Str("transaction_id", txn.ID).Msg("failed to write audit log for transaction")
		}
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsRecorded.WithLabelValues(string(txn.Type)).Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(txn.Type)).Observe(txn.Amount.InexactFloat64())
	}

	return txn, nil
}

// ListTransactions returns ledger entries, most recent first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error) {
	if filter.Limit > 0 {
		filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	}

	return uc.txnRepo.List(ctx, filter)
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// Summarize derives income, expense and balance for the (optionally
// filtered) ledger. The unfiltered summary is served through a short-TTL
// cache; the ledger itself remains the source of truth and the summary is
// recomputed from it on every miss.
func (uc *LedgerUseCase) Summarize(ctx context.Context, filter TransactionFilter) (domain.Summary, error) {
	unfiltered := filter.Type == nil && filter.Category == ""

	if unfiltered && uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, SummaryCacheKey); err == nil {
			var summary domain.Summary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				if uc.metrics != nil {
					uc.metrics.SummaryCacheHits.Inc()
				}

				return summary, nil
			}
		}

		if uc.metrics != nil {
			uc.metrics.SummaryCacheMisses.Inc()
		}
	}

	// The summary always folds the full matching ledger, never a page.
	filter.Limit = 0
	filter.Offset = 0

	transactions, err := uc.txnRepo.List(ctx, filter)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summarize(transactions)

	if unfiltered && uc.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, SummaryCacheKey, string(data), SummaryCacheTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache ledger summary")
			}
		}
	}

	return summary, nil
}
