package usecase

import (
	"context"

	"github.com/iho/rukun/internal/infrastructure/metrics"
)

// TallyUseCase verifies poll tallies against the vote ledger.
type TallyUseCase struct {
	tallyRepo TallyRepository
	metrics   *metrics.Metrics
}

// NewTallyUseCase creates a new TallyUseCase. m is optional; pass nil to
// disable metrics.
func NewTallyUseCase(tallyRepo TallyRepository, m *metrics.Metrics) *TallyUseCase {
	return &TallyUseCase{
		tallyRepo: tallyRepo,
		metrics:   m,
	}
}

// CheckConsistency verifies that for every poll the cached total equals
// the count of committed vote rows and the sum of option counters. The
// vote ledger is the source of truth; any mismatch means a tally was
// corrupted, since totals are maintained incrementally and never
// re-derived on the hot path.
func (uc *TallyUseCase) CheckConsistency(ctx context.Context) (bool, []TallyMismatch, error) {
	mismatches, err := uc.tallyRepo.CheckConsistency(ctx)
	if err != nil {
		return false, nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TallyMismatches.Set(float64(len(mismatches)))
	}

	return len(mismatches) == 0, mismatches, nil
}
