package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

// MockPollRepository is a mock implementation of PollRepository. The
// default behavior keeps polls in memory with mutex-guarded counters, so
// concurrent ApplyVote calls behave like the real atomic increments.
type MockPollRepository struct {
	mu    sync.Mutex
	polls map[string]*domain.Poll

	CreateFunc    func(ctx context.Context, tx usecase.Transaction, poll *domain.Poll) error
	GetByIDFunc   func(ctx context.Context, id string) (*domain.Poll, error)
	GetByIDTxFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Poll, error)
	ListFunc      func(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	ApplyVoteFunc func(ctx context.Context, tx usecase.Transaction, pollID, optionID string, at time.Time) error
	CloseFunc     func(ctx context.Context, tx usecase.Transaction, pollID string, at time.Time) error
}

func NewMockPollRepository() *MockPollRepository {
	return &MockPollRepository{
		polls: make(map[string]*domain.Poll),
	}
}

// Seed stores a poll directly, bypassing any transaction.
func (m *MockPollRepository) Seed(poll *domain.Poll) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[poll.ID] = poll
}

func (m *MockPollRepository) Create(ctx context.Context, tx usecase.Transaction, poll *domain.Poll) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, poll)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[poll.ID] = poll
	return nil
}

func (m *MockPollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok := m.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	copied := *poll
	copied.Options = append([]domain.Option(nil), poll.Options...)
	return &copied, nil
}

func (m *MockPollRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Poll, error) {
	if m.GetByIDTxFunc != nil {
		return m.GetByIDTxFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	polls := make([]*domain.Poll, 0, len(m.polls))
	for _, p := range m.polls {
		polls = append(polls, p)
	}
	return polls, nil
}

func (m *MockPollRepository) ApplyVote(ctx context.Context, tx usecase.Transaction, pollID, optionID string, at time.Time) error {
	if m.ApplyVoteFunc != nil {
		return m.ApplyVoteFunc(ctx, tx, pollID, optionID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok := m.polls[pollID]
	if !ok {
		return domain.ErrPollNotFound
	}
	if poll.Closed {
		return domain.ErrPollClosed
	}
	for i := range poll.Options {
		if poll.Options[i].ID == optionID {
			poll.Options[i].Votes++
			poll.TotalVotes++
			poll.UpdatedAt = at
			return nil
		}
	}
	return domain.ErrOptionNotFound
}

func (m *MockPollRepository) Close(ctx context.Context, tx usecase.Transaction, pollID string, at time.Time) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tx, pollID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	poll, ok := m.polls[pollID]
	if !ok {
		return domain.ErrPollNotFound
	}
	poll.Closed = true
	poll.UpdatedAt = at
	return nil
}

// MockVoteRepository is a mock implementation of VoteRepository. The
// default Create is an atomic check-and-insert under one mutex, matching
// the unique-index guarantee of the real store.
type MockVoteRepository struct {
	mu    sync.Mutex
	votes map[string]*domain.Vote // key: pollID + "/" + userID

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, vote *domain.Vote) error
	GetByPollAndUserFunc func(ctx context.Context, pollID, userID string) (*domain.Vote, error)
	ListByUserFunc       func(ctx context.Context, userID string) ([]*domain.Vote, error)
	CountByPollFunc      func(ctx context.Context, pollID string) (int64, error)
}

func NewMockVoteRepository() *MockVoteRepository {
	return &MockVoteRepository{
		votes: make(map[string]*domain.Vote),
	}
}

func voteKey(pollID, userID string) string {
	return pollID + "/" + userID
}

func (m *MockVoteRepository) Create(ctx context.Context, tx usecase.Transaction, vote *domain.Vote) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, vote)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := voteKey(vote.PollID, vote.UserID)
	if _, exists := m.votes[key]; exists {
		return domain.ErrAlreadyVoted
	}
	m.votes[key] = vote
	return nil
}

func (m *MockVoteRepository) GetByPollAndUser(ctx context.Context, pollID, userID string) (*domain.Vote, error) {
	if m.GetByPollAndUserFunc != nil {
		return m.GetByPollAndUserFunc(ctx, pollID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vote, ok := m.votes[voteKey(pollID, userID)]
	if !ok {
		return nil, domain.ErrVoteNotFound
	}
	return vote, nil
}

func (m *MockVoteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Vote, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var votes []*domain.Vote
	for _, v := range m.votes {
		if v.UserID == userID {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

func (m *MockVoteRepository) CountByPoll(ctx context.Context, pollID string) (int64, error) {
	if m.CountByPollFunc != nil {
		return m.CountByPollFunc(ctx, pollID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, v := range m.votes {
		if v.PollID == pollID {
			count++
		}
	}
	return count, nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository. Entries are kept most recent first.
type MockTransactionRepository struct {
	mu           sync.Mutex
	transactions []*domain.Transaction

	CreateFunc  func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Transaction, error)
	ListFunc    func(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append([]*domain.Transaction{txn}, m.transactions...)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range m.transactions {
		if txn.ID == id {
			return txn, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Transaction
	for _, txn := range m.transactions {
		if filter.Type != nil && txn.Type != *filter.Type {
			continue
		}
		if filter.Category != "" && txn.Category != filter.Category {
			continue
		}
		result = append(result, txn)
	}
	return result, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns a snapshot of recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTx{}, nil
}

// MockTx is a no-op transaction.
type MockTx struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTx) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockClock is a mock implementation of Clock with a settable instant.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu     sync.Mutex
	values map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		values: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("cache miss: %s", key)
	}
	return value, nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
