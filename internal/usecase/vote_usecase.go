package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/infrastructure/metrics"
)

// VoteUseCase handles vote casting. The correctness contract: exactly one
// vote per (poll, user) ever, and a committed vote is always accompanied
// by its tally increments. Both are enforced inside a single database
// transaction, so a cancelled cast leaves either both or neither.
type VoteUseCase struct {
	txManager  TransactionManager
	pollRepo   PollRepository
	voteRepo   VoteRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	clock      Clock
	retrier    Retrier
	auditRepo  AuditRepository
	metrics    *metrics.Metrics
}

// NewVoteUseCase creates a new VoteUseCase. auditRepo and metrics are
// optional; pass nil to disable them.
func NewVoteUseCase(
	txManager TransactionManager,
	pollRepo PollRepository,
	voteRepo VoteRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	auditRepo AuditRepository,
	m *metrics.Metrics,
) *VoteUseCase {
	return &VoteUseCase{
		txManager:  txManager,
		pollRepo:   pollRepo,
		voteRepo:   voteRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		clock:      clock,
		retrier:    retrier,
		auditRepo:  auditRepo,
		metrics:    m,
	}
}

// CastVoteInput represents input for casting a vote.
type CastVoteInput struct {
	PollID   string
	UserID   string
	OptionID string
}

// CastVote records a vote and updates the tally.
//
// Retrying on serialization conflicts is safe here: nothing commits on a
// failed attempt, and a duplicate submission surfaces as ErrAlreadyVoted,
// which makes the operation self-correcting under retry.
func (uc *VoteUseCase) CastVote(ctx context.Context, input CastVoteInput) (*domain.Vote, error) {
	start := time.Now()
	now := uc.clock.Now()

	poll, err := uc.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	if err := poll.CanVote(now); err != nil {
		if uc.metrics != nil {
			uc.metrics.VotesRejected.WithLabelValues(rejectionReason(err)).Inc()
		}
		return nil, err
	}

	if _, err := poll.FindOption(input.OptionID); err != nil {
		if uc.metrics != nil {
			uc.metrics.VotesRejected.WithLabelValues(rejectionReason(err)).Inc()
		}
		return nil, err
	}

	vote := &domain.Vote{
		ID:        uc.idGen.Generate(),
		PollID:    input.PollID,
		UserID:    input.UserID,
		OptionID:  input.OptionID,
		CreatedAt: now,
	}

	commit := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.voteRepo.Create(ctx, tx, vote); err != nil {
			return err
		}

		if err := uc.pollRepo.ApplyVote(ctx, tx, input.PollID, input.OptionID, now); err != nil {
			return err
		}

		err = uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   input.PollID,
			AggregateType: domain.AggregateTypePoll,
			EventType:     domain.EventTypeVoteCast,
			Payload: domain.MarshalState(domain.VoteCastEvent{
				VoteID:   vote.ID,
				PollID:   vote.PollID,
				OptionID: vote.OptionID,
			}),
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, commit)
	} else {
		err = commit()
	}

	if err != nil {
		if uc.metrics != nil {
			uc.metrics.VotesRejected.WithLabelValues(rejectionReason(err)).Inc()
		}
		return nil, err
	}

	if uc.auditRepo != nil {
		auditErr := uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       input.UserID,
			Action:       string(domain.AuditActionVoteCast),
			ResourceType: "poll",
			ResourceID:   input.PollID,
			AfterState:   domain.MarshalState(vote),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
		if auditErr != nil {
			log.Warn().Err(auditErr).Str("poll_id", input.PollID).Msg("failed to write audit log for vote")
		}
	}

	if uc.metrics != nil {
		uc.metrics.VotesCast.Inc()
		uc.metrics.VoteDuration.Observe(time.Since(start).Seconds())
	}

	return vote, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domain.ErrPollClosed):
		return "poll_closed"
	case errors.Is(err, domain.ErrPollNotStarted):
		return "poll_not_started"
	case errors.Is(err, domain.ErrOptionNotFound):
		return "option_not_found"
	default:
		return "error"
	}
}
