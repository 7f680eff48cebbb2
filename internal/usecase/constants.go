package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// SummaryCacheKey is the cache key for the unfiltered ledger summary
	SummaryCacheKey = "ledger:summary"

	// SummaryCacheTTL bounds how stale a cached summary may get; the
	// transaction ledger stays the source of truth
	SummaryCacheTTL = 5 * time.Minute
)
