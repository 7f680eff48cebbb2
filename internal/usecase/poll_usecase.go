package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/infrastructure/metrics"
)

// PollUseCase handles poll lifecycle and read-path business logic.
type PollUseCase struct {
	txManager  TransactionManager
	pollRepo   PollRepository
	voteRepo   VoteRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	clock      Clock
	auditRepo  AuditRepository
	metrics    *metrics.Metrics
}

// NewPollUseCase creates a new PollUseCase. auditRepo and metrics are
// optional; pass nil to disable them.
func NewPollUseCase(
	txManager TransactionManager,
	pollRepo PollRepository,
	voteRepo VoteRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	auditRepo AuditRepository,
	m *metrics.Metrics,
) *PollUseCase {
	return &PollUseCase{
		txManager:  txManager,
		pollRepo:   pollRepo,
		voteRepo:   voteRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		clock:      clock,
		auditRepo:  auditRepo,
		metrics:    m,
	}
}

// CreatePollInput represents input for creating a poll.
type CreatePollInput struct {
	Title       string
	Description string
	Options     []domain.Option
	EndDate     *time.Time
	ActorID     string
}

// CreatePoll creates a poll with zeroed tallies and returns the
// creator's view of it. Status is derived from the same clock reading
// used for CreatedAt, so a poll whose end date is already past is born
// closed and its empty tallies are visible from the first response.
func (uc *PollUseCase) CreatePoll(ctx context.Context, input CreatePollInput) (*PollView, error) {
	if err := domain.ValidatePollTitle(input.Title); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	if err := domain.ValidateOptions(input.Options); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	options := make([]domain.Option, len(input.Options))
	for i, opt := range input.Options {
		if opt.ID == "" {
			opt.ID = uc.idGen.Generate()
		}
		opt.Votes = 0
		options[i] = opt
	}

	poll := &domain.Poll{
		ID:          uc.idGen.Generate(),
		Title:       input.Title,
		Description: input.Description,
		Options:     options,
		TotalVotes:  0,
		CreatedAt:   now,
		EndDate:     input.EndDate,
		UpdatedAt:   now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.pollRepo.Create(ctx, tx, poll); err != nil {
		return nil, err
	}

	var endDate *string
	if poll.EndDate != nil {
		s := poll.EndDate.Format(time.RFC3339)
		endDate = &s
	}

	err = uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   poll.ID,
		AggregateType: domain.AggregateTypePoll,
		EventType:     domain.EventTypePollCreated,
		Payload: domain.MarshalState(domain.PollCreatedEvent{
			PollID:      poll.ID,
			Title:       poll.Title,
			OptionCount: len(poll.Options),
			EndDate:     endDate,
		}),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.writeAudit(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       actorOrSystem(input.ActorID),
		Action:       string(domain.AuditActionPollCreate),
		ResourceType: "poll",
		ResourceID:   poll.ID,
		AfterState:   domain.MarshalState(poll),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	})

	if uc.metrics != nil {
		uc.metrics.PollsCreated.Inc()
	}

	status := poll.Status(now)

	return &PollView{
		Poll:           poll,
		Status:         status,
		ResultsVisible: status == domain.PollStatusClosed,
	}, nil
}

// PollView is the read model for one poll as seen by one user.
type PollView struct {
	Poll             *domain.Poll
	Status           domain.PollStatus
	HasVoted         bool
	SelectedOptionID string
	// ResultsVisible controls whether tallies are revealed: only after
	// the viewer has voted, or once the poll is closed.
	ResultsVisible bool
}

// GetPollView returns the poll together with the viewer's participation
// state. Status uses the same clock reading consumers would see on a
// write in the same logical request.
func (uc *PollUseCase) GetPollView(ctx context.Context, pollID, userID string) (*PollView, error) {
	now := uc.clock.Now()

	poll, err := uc.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	view := &PollView{
		Poll:   poll,
		Status: poll.Status(now),
	}

	vote, err := uc.voteRepo.GetByPollAndUser(ctx, pollID, userID)
	switch {
	case err == nil:
		view.HasVoted = true
		view.SelectedOptionID = vote.OptionID
	case errors.Is(err, domain.ErrVoteNotFound):
		// blank ballot
	default:
		return nil, err
	}

	view.ResultsVisible = view.HasVoted || view.Status == domain.PollStatusClosed

	return view, nil
}

// ListPollsInput represents input for listing polls.
type ListPollsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListPolls lists polls newest first, each with the caller's
// participation state.
func (uc *PollUseCase) ListPolls(ctx context.Context, input ListPollsInput) ([]*PollView, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	now := uc.clock.Now()

	polls, err := uc.pollRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	votes, err := uc.voteRepo.ListByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	voted := make(map[string]string, len(votes))
	for _, v := range votes {
		voted[v.PollID] = v.OptionID
	}

	views := make([]*PollView, len(polls))
	for i, poll := range polls {
		optionID, hasVoted := voted[poll.ID]
		status := poll.Status(now)
		views[i] = &PollView{
			Poll:             poll,
			Status:           status,
			HasVoted:         hasVoted,
			SelectedOptionID: optionID,
			ResultsVisible:   hasVoted || status == domain.PollStatusClosed,
		}
	}

	return views, nil
}

// ClosePoll marks a poll closed by explicit management action.
func (uc *PollUseCase) ClosePoll(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
	now := uc.clock.Now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	poll, err := uc.pollRepo.GetByIDTx(ctx, tx, pollID)
	if err != nil {
		return nil, err
	}

	if err := uc.pollRepo.Close(ctx, tx, pollID, now); err != nil {
		return nil, err
	}

	err = uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   poll.ID,
		AggregateType: domain.AggregateTypePoll,
		EventType:     domain.EventTypePollClosed,
		Payload: domain.MarshalState(domain.PollClosedEvent{
			PollID:     poll.ID,
			TotalVotes: poll.TotalVotes,
		}),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	poll.Closed = true
	poll.UpdatedAt = now

	uc.writeAudit(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       actorOrSystem(actorID),
		Action:       string(domain.AuditActionPollClose),
		ResourceType: "poll",
		ResourceID:   poll.ID,
		AfterState:   domain.MarshalState(poll),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	})

	if uc.metrics != nil {
		uc.metrics.PollsClosed.Inc()
	}

	return poll, nil
}

// writeAudit records an audit entry when auditing is configured. Audit
// writes never fail the operation that already committed.
func (uc *PollUseCase) writeAudit(ctx context.Context, entry *domain.AuditLog) {
	if uc.auditRepo == nil {
		return
	}
	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", entry.Action).Msg("failed to write audit log")
	}
}

func actorOrSystem(id string) string {
	if id == "" {
		return "system"
	}

	return id
}
