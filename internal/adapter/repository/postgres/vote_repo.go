package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// VoteRepository implements usecase.VoteRepository.
type VoteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository(pool *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{pool: pool}
}

// Create inserts a vote within a transaction. The unique (poll_id, user_id)
// index decides exactly-once participation at commit time; there is no
// separate existence check to race against.
func (r *VoteRepository) Create(ctx context.Context, tx usecase.Transaction, vote *domain.Vote) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO votes (id, poll_id, user_id, option_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		vote.ID,
		vote.PollID,
		vote.UserID,
		vote.OptionID,
		vote.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrAlreadyVoted
		}
		return err
	}

	return nil
}

// GetByPollAndUser retrieves the vote a user cast in a poll, if any.
func (r *VoteRepository) GetByPollAndUser(ctx context.Context, pollID, userID string) (*domain.Vote, error) {
	var vote domain.Vote

	err := r.pool.QueryRow(ctx, `
		SELECT id, poll_id, user_id, option_id, created_at
		FROM votes
		WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(
		&vote.ID,
		&vote.PollID,
		&vote.UserID,
		&vote.OptionID,
		&vote.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrVoteNotFound
		}
		return nil, err
	}

	return &vote, nil
}

// ListByUser retrieves all votes cast by a user.
func (r *VoteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Vote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, poll_id, user_id, option_id, created_at
		FROM votes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*domain.Vote
	for rows.Next() {
		var vote domain.Vote
		err := rows.Scan(
			&vote.ID,
			&vote.PollID,
			&vote.UserID,
			&vote.OptionID,
			&vote.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		votes = append(votes, &vote)
	}

	return votes, rows.Err()
}

// CountByPoll counts committed vote rows for a poll.
func (r *VoteRepository) CountByPoll(ctx context.Context, pollID string) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM votes WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
