package usecase

import (
	"context"
	"time"

	"github.com/iho/rukun/internal/domain"
)

// PollRepository defines data access for polls and their tallies.
type PollRepository interface {
	Create(ctx context.Context, tx Transaction, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	// ApplyVote increments the option counter and the poll total by one,
	// as atomic in-database increments. It must run in the same
	// transaction as the vote insert.
	ApplyVote(ctx context.Context, tx Transaction, pollID, optionID string, at time.Time) error
	Close(ctx context.Context, tx Transaction, pollID string, at time.Time) error
}

// VoteRepository defines data access for the vote ledger.
type VoteRepository interface {
	// Create inserts a vote. The (poll_id, user_id) uniqueness check and
	// the insert are one atomic step; a duplicate returns
	// domain.ErrAlreadyVoted.
	Create(ctx context.Context, tx Transaction, vote *domain.Vote) error
	GetByPollAndUser(ctx context.Context, pollID, userID string) (*domain.Vote, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Vote, error)
	CountByPoll(ctx context.Context, pollID string) (int64, error)
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	Type     *domain.TransactionType
	Category string
	Limit    int
	Offset   int
}

// TransactionRepository defines data access for the finance ledger.
// Append-only: there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// List returns transactions most recent first. A non-positive Limit
	// returns the full ledger.
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
}

// TallyMismatch reports a poll whose cached totals diverge from the vote
// ledger.
type TallyMismatch struct {
	PollID     string
	TotalVotes int64
	VoteCount  int64
	OptionSum  int64
}

// TallyRepository defines ledger-wide tally verification.
type TallyRepository interface {
	CheckConsistency(ctx context.Context) ([]TallyMismatch, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time. Injected so that lifecycle derivation
// is deterministic and testable without waiting.
type Clock interface {
	Now() time.Time
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations. Cached values are never authoritative.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
