package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iho/rukun/internal/adapter/repository/postgres"
	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
	"github.com/iho/rukun/tests/testutil"
)

func newVoteUseCase(pool *testutil.TestDB) *usecase.VoteUseCase {
	txManager := postgres.NewTxManager(pool.Pool)
	pollRepo := postgres.NewPollRepository(pool.Pool)
	voteRepo := postgres.NewVoteRepository(pool.Pool)
	outboxRepo := postgres.NewOutboxRepository(pool.Pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	return usecase.NewVoteUseCase(txManager, pollRepo, voteRepo, outboxRepo, idGen, usecase.NewSystemClock(), retrier, nil, nil)
}

func TestConcurrentVotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	pollRepo := postgres.NewPollRepository(testDB.Pool)
	voteRepo := postgres.NewVoteRepository(testDB.Pool)
	voteUC := newVoteUseCase(testDB)

	t.Run("100 distinct voters all land exactly once", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		poll := testDB.CreateTestPoll(ctx, "pemilihan ketua RT", "Pak Budi", "Bu Sari")

		numVoters := 100

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			errorCount   atomic.Int32
		)

		wg.Add(numVoters)

		for i := range numVoters {
			optionID := poll.Options[i%2].ID
			userID := fmt.Sprintf("user-%03d", i)

			go func() {
				defer wg.Done()

				_, err := voteUC.CastVote(ctx, usecase.CastVoteInput{
					PollID:   poll.ID,
					UserID:   userID,
					OptionID: optionID,
				})
				if err != nil {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != int32(numVoters) {
			t.Errorf("expected %d successful votes, got %d (errors: %d)", numVoters, successCount.Load(), errorCount.Load())
		}

		stored, err := pollRepo.GetByID(ctx, poll.ID)
		if err != nil {
			t.Fatalf("failed to reload poll: %v", err)
		}

		if stored.TotalVotes != int64(numVoters) {
			t.Errorf("expected total %d, got %d", numVoters, stored.TotalVotes)
		}

		var optionSum int64
		for _, opt := range stored.Options {
			optionSum += opt.Votes
		}
		if optionSum != stored.TotalVotes {
			t.Errorf("option sum %d does not match total %d", optionSum, stored.TotalVotes)
		}

		count, err := voteRepo.CountByPoll(ctx, poll.ID)
		if err != nil {
			t.Fatalf("failed to count votes: %v", err)
		}
		if count != stored.TotalVotes {
			t.Errorf("vote rows %d do not match total %d", count, stored.TotalVotes)
		}
	})

	t.Run("one voter submitting concurrently lands exactly once", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		poll := testDB.CreateTestPoll(ctx, "jadwal ronda", "Malam Jumat", "Malam Minggu")

		attempts := 10

		var (
			wg             sync.WaitGroup
			successCount   atomic.Int32
			duplicateCount atomic.Int32
		)

		wg.Add(attempts)

		for range attempts {
			go func() {
				defer wg.Done()

				_, err := voteUC.CastVote(ctx, usecase.CastVoteInput{
					PollID:   poll.ID,
					UserID:   "user-1",
					OptionID: poll.Options[0].ID,
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrAlreadyVoted):
					duplicateCount.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 1 {
			t.Errorf("expected exactly 1 successful vote, got %d", successCount.Load())
		}
		if duplicateCount.Load() != int32(attempts-1) {
			t.Errorf("expected %d duplicate rejections, got %d", attempts-1, duplicateCount.Load())
		}

		stored, err := pollRepo.GetByID(ctx, poll.ID)
		if err != nil {
			t.Fatalf("failed to reload poll: %v", err)
		}
		if stored.TotalVotes != 1 {
			t.Errorf("expected total 1, got %d", stored.TotalVotes)
		}
	})
}
