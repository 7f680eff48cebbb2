package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/rukun/internal/usecase"
)

// TallyRepository implements usecase.TallyRepository.
type TallyRepository struct {
	pool *pgxpool.Pool
}

// NewTallyRepository creates a new TallyRepository.
func NewTallyRepository(pool *pgxpool.Pool) *TallyRepository {
	return &TallyRepository{pool: pool}
}

// CheckConsistency compares, for every poll, the cached total against the
// count of vote rows and the sum of option counters. The vote rows are the
// source of truth; a returned row means a tally drifted.
func (r *TallyRepository) CheckConsistency(ctx context.Context) ([]usecase.TallyMismatch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id,
		       p.total_votes,
		       COALESCE(v.vote_count, 0),
		       COALESCE(o.option_sum, 0)
		FROM polls p
		LEFT JOIN (
			SELECT poll_id, COUNT(*) AS vote_count
			FROM votes
			GROUP BY poll_id
		) v ON v.poll_id = p.id
		LEFT JOIN (
			SELECT poll_id, SUM(votes) AS option_sum
			FROM poll_options
			GROUP BY poll_id
		) o ON o.poll_id = p.id
		WHERE p.total_votes <> COALESCE(v.vote_count, 0)
		   OR p.total_votes <> COALESCE(o.option_sum, 0)
		ORDER BY p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mismatches []usecase.TallyMismatch
	for rows.Next() {
		var m usecase.TallyMismatch
		err := rows.Scan(&m.PollID, &m.TotalVotes, &m.VoteCount, &m.OptionSum)
		if err != nil {
			return nil, err
		}
		mismatches = append(mismatches, m)
	}

	return mismatches, rows.Err()
}
