package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx so that reads can
// run inside or outside a transaction.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PollRepository implements usecase.PollRepository.
type PollRepository struct {
	pool *pgxpool.Pool
}

// NewPollRepository creates a new PollRepository.
func NewPollRepository(pool *pgxpool.Pool) *PollRepository {
	return &PollRepository{pool: pool}
}

// Create inserts a poll and its options within a transaction.
func (r *PollRepository) Create(ctx context.Context, tx usecase.Transaction, poll *domain.Poll) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO polls (id, title, description, total_votes, created_at, end_date, closed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		poll.ID,
		poll.Title,
		poll.Description,
		poll.TotalVotes,
		poll.CreatedAt,
		poll.EndDate,
		poll.Closed,
		poll.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for i, opt := range poll.Options {
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO poll_options (id, poll_id, name, description, votes, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			opt.ID,
			poll.ID,
			opt.Name,
			opt.Description,
			opt.Votes,
			i,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a poll with its options.
func (r *PollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	return getPoll(ctx, r.pool, id)
}

// GetByIDTx retrieves a poll within a transaction. Used when the caller
// needs the row as of the transaction's snapshot.
func (r *PollRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Poll, error) {
	return getPoll(ctx, tx.(*Tx).PgxTx(), id)
}

func getPoll(ctx context.Context, q queryer, id string) (*domain.Poll, error) {
	var poll domain.Poll

	err := q.QueryRow(ctx, `
		SELECT id, title, description, total_votes, created_at, end_date, closed, updated_at
		FROM polls
		WHERE id = $1
	`, id).Scan(
		&poll.ID,
		&poll.Title,
		&poll.Description,
		&poll.TotalVotes,
		&poll.CreatedAt,
		&poll.EndDate,
		&poll.Closed,
		&poll.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, err
	}

	options, err := getOptions(ctx, q, id)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return &poll, nil
}

func getOptions(ctx context.Context, q queryer, pollID string) ([]domain.Option, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, description, votes
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.Description, &opt.Votes); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

// List retrieves polls newest first, with their options.
func (r *PollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, total_votes, created_at, end_date, closed, updated_at
		FROM polls
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		err := rows.Scan(
			&poll.ID,
			&poll.Title,
			&poll.Description,
			&poll.TotalVotes,
			&poll.CreatedAt,
			&poll.EndDate,
			&poll.Closed,
			&poll.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, poll := range polls {
		options, err := getOptions(ctx, r.pool, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options
	}

	return polls, nil
}

// ApplyVote increments the option counter and the poll total in place.
// Both updates are single-statement increments, never read-modify-write,
// so concurrent casts cannot lose each other's counts. The poll update
// only matches open rows: a cast that read the poll before a concurrent
// close committed fails here and rolls back with its vote insert.
func (r *PollRepository) ApplyVote(ctx context.Context, tx usecase.Transaction, pollID, optionID string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE poll_options
		SET votes = votes + 1
		WHERE id = $1 AND poll_id = $2
	`, optionID, pollID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOptionNotFound
	}

	tag, err = pgxTx.Exec(ctx, `
		UPDATE polls
		SET total_votes = total_votes + 1, updated_at = $2
		WHERE id = $1 AND closed = FALSE
	`, pollID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// The option row matched above, so the poll exists; zero rows
		// means the closed flag landed first.
		return domain.ErrPollClosed
	}

	return nil
}

// Close marks a poll closed. Closing an already closed poll is a no-op at
// this layer.
func (r *PollRepository) Close(ctx context.Context, tx usecase.Transaction, pollID string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE polls
		SET closed = TRUE, updated_at = $2
		WHERE id = $1
	`, pollID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPollNotFound
	}

	return nil
}
