package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/rukun/internal/adapter/http/dto"
	"github.com/iho/rukun/internal/adapter/http/middleware"
	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

// PollService defines the behavior needed by PollHandler.
type PollService interface {
	CreatePoll(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error)
	GetPollView(ctx context.Context, pollID, userID string) (*usecase.PollView, error)
	ListPolls(ctx context.Context, input usecase.ListPollsInput) ([]*usecase.PollView, error)
	ClosePoll(ctx context.Context, pollID, actorID string) (*domain.Poll, error)
}

// VoteService defines the behavior needed by PollHandler for voting.
type VoteService interface {
	CastVote(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error)
}

// PollHandler handles poll-related HTTP requests.
type PollHandler struct {
	pollUC PollService
	voteUC VoteService
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(pollUC PollService, voteUC VoteService) *PollHandler {
	return &PollHandler{pollUC: pollUC, voteUC: voteUC}
}

// Create creates a new poll.
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput()
	input.ActorID = middleware.UserIDFromContext(r.Context())

	view, err := h.pollUC.CreatePoll(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create poll", err.Error())

		return
	}

	// The view carries the derived status: a poll created with an end
	// date already past reads as closed from its first response.
	writeJSON(w, http.StatusCreated, dto.PollFromView(view))
}

// Get retrieves a poll as seen by the requesting user.
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing poll ID", "")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())

	view, err := h.pollUC.GetPollView(r.Context(), id, userID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get poll", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PollFromView(view))
}

// List lists polls, newest first.
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	views, err := h.pollUC.ListPolls(r.Context(), usecase.ListPollsInput{
		UserID: middleware.UserIDFromContext(r.Context()),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list polls", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPollsResponse{
		Polls: dto.PollsFromViews(views),
		Total: int64(len(views)),
	})
}

// Vote casts the requesting user's vote on a poll.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing poll ID", "")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity", "")
		return
	}

	var req dto.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	vote, err := h.voteUC.CastVote(r.Context(), usecase.CastVoteInput{
		PollID:   id,
		UserID:   userID,
		OptionID: req.OptionID,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to cast vote", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.VoteFromDomain(vote))
}

// Close closes a poll so no further votes are accepted.
func (h *PollHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing poll ID", "")
		return
	}

	poll, err := h.pollUC.ClosePoll(r.Context(), id, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to close poll", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PollFromView(&usecase.PollView{
		Poll:           poll,
		Status:         domain.PollStatusClosed,
		ResultsVisible: true,
	}))
}
