package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/rukun/internal/adapter/http/dto"
	"github.com/iho/rukun/internal/adapter/http/middleware"
	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

type pollServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error)
	getFn    func(ctx context.Context, pollID, userID string) (*usecase.PollView, error)
	listFn   func(ctx context.Context, input usecase.ListPollsInput) ([]*usecase.PollView, error)
	closeFn  func(ctx context.Context, pollID, actorID string) (*domain.Poll, error)
}

func (s *pollServiceStub) CreatePoll(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error) {
	return s.createFn(ctx, input)
}

func (s *pollServiceStub) GetPollView(ctx context.Context, pollID, userID string) (*usecase.PollView, error) {
	return s.getFn(ctx, pollID, userID)
}

func (s *pollServiceStub) ListPolls(ctx context.Context, input usecase.ListPollsInput) ([]*usecase.PollView, error) {
	return s.listFn(ctx, input)
}

func (s *pollServiceStub) ClosePoll(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
	return s.closeFn(ctx, pollID, actorID)
}

type voteServiceStub struct {
	castFn func(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error)
}

func (s *voteServiceStub) CastVote(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error) {
	return s.castFn(ctx, input)
}

func testPoll() *domain.Poll {
	return &domain.Poll{
		ID:    "poll-1",
		Title: "Jadwal kerja bakti",
		Options: []domain.Option{
			{ID: "opt-1", Name: "Sabtu", Votes: 3},
			{ID: "opt-2", Name: "Minggu", Votes: 1},
		},
		TotalVotes: 4,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
}

func TestPollHandler_Create_Success(t *testing.T) {
	var captured usecase.CreatePollInput
	handler := NewPollHandler(&pollServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error) {
			captured = input
			return &usecase.PollView{Poll: testPoll(), Status: domain.PollStatusActive}, nil
		},
	}, &voteServiceStub{})

	body, _ := json.Marshal(dto.CreatePollRequest{
		Title: "Jadwal kerja bakti",
		Options: []dto.CreateOptionItem{
			{Name: "Sabtu"},
			{Name: "Minggu"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/polls", bytes.NewReader(body))
	req = withUserID(req, "user-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Title != "Jadwal kerja bakti" || len(captured.Options) != 2 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if captured.ActorID != "user-1" {
		t.Fatalf("expected actor user-1, got %q", captured.ActorID)
	}

	var resp dto.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "poll-1" {
		t.Fatalf("expected poll ID poll-1, got %s", resp.ID)
	}
	// The creator has not voted, so tallies stay hidden.
	if resp.TotalVotes != nil {
		t.Fatal("expected total votes to be hidden on a fresh poll")
	}
}

func TestPollHandler_Create_PastEndDateReportsClosed(t *testing.T) {
	end := time.Now().Add(-time.Hour)
	handler := NewPollHandler(&pollServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error) {
			poll := testPoll()
			poll.TotalVotes = 0
			poll.Options[0].Votes = 0
			poll.Options[1].Votes = 0
			poll.EndDate = input.EndDate
			return &usecase.PollView{
				Poll:           poll,
				Status:         domain.PollStatusClosed,
				ResultsVisible: true,
			}, nil
		},
	}, &voteServiceStub{})

	body, _ := json.Marshal(dto.CreatePollRequest{
		Title:   "Jadwal kerja bakti",
		EndDate: &end,
		Options: []dto.CreateOptionItem{
			{Name: "Sabtu"},
			{Name: "Minggu"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/polls", bytes.NewReader(body))
	req = withUserID(req, "user-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// The response must report the derived status, not assume a fresh
	// poll is active.
	if resp.Status != string(domain.PollStatusClosed) {
		t.Fatalf("expected closed status for a past end date, got %s", resp.Status)
	}
	if resp.TotalVotes == nil {
		t.Fatal("expected tallies visible on a born-closed poll")
	}
}

func TestPollHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error) {
			t.Fatal("CreatePoll should not be called for invalid payload")
			return nil, nil
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/polls", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPollHandler_Create_ValidationError(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePollInput) (*usecase.PollView, error) {
			return nil, domain.ErrNotEnoughOptions
		},
	}, &voteServiceStub{})

	body, _ := json.Marshal(dto.CreatePollRequest{Title: "x", Options: []dto.CreateOptionItem{{Name: "only"}}})
	req := httptest.NewRequest(http.MethodPost, "/polls", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPollHandler_Get_HidesResultsBeforeVoting(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		getFn: func(ctx context.Context, pollID, userID string) (*usecase.PollView, error) {
			if pollID != "poll-1" {
				t.Fatalf("expected poll-1, got %s", pollID)
			}
			return &usecase.PollView{
				Poll:   testPoll(),
				Status: domain.PollStatusActive,
			}, nil
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/polls/poll-1", nil)
	req = setChiURLParam(req, "id", "poll-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalVotes != nil {
		t.Fatal("expected total votes hidden before voting")
	}
	for _, opt := range resp.Options {
		if opt.Votes != nil || opt.Percentage != nil {
			t.Fatalf("expected option tallies hidden, got %+v", opt)
		}
	}
}

func TestPollHandler_Get_ShowsResultsAfterVoting(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		getFn: func(ctx context.Context, pollID, userID string) (*usecase.PollView, error) {
			return &usecase.PollView{
				Poll:             testPoll(),
				Status:           domain.PollStatusActive,
				HasVoted:         true,
				SelectedOptionID: "opt-1",
				ResultsVisible:   true,
			}, nil
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/polls/poll-1", nil)
	req = setChiURLParam(req, "id", "poll-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	var resp dto.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalVotes == nil || *resp.TotalVotes != 4 {
		t.Fatalf("expected total votes 4, got %v", resp.TotalVotes)
	}
	if resp.SelectedOptionID != "opt-1" {
		t.Fatalf("expected selected option opt-1, got %s", resp.SelectedOptionID)
	}
	if resp.Options[0].Percentage == nil || *resp.Options[0].Percentage != 75 {
		t.Fatalf("expected 75%% for opt-1, got %v", resp.Options[0].Percentage)
	}
}

func TestPollHandler_Get_NotFound(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		getFn: func(ctx context.Context, pollID, userID string) (*usecase.PollView, error) {
			return nil, domain.ErrPollNotFound
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/polls/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPollHandler_List(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		listFn: func(ctx context.Context, input usecase.ListPollsInput) ([]*usecase.PollView, error) {
			if input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got %+v", input)
			}
			return []*usecase.PollView{
				{Poll: testPoll(), Status: domain.PollStatusActive},
			}, nil
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/polls?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListPollsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Polls) != 1 {
		t.Fatalf("expected 1 poll, got %d", len(resp.Polls))
	}
}

func TestPollHandler_Vote_Success(t *testing.T) {
	var captured usecase.CastVoteInput
	handler := NewPollHandler(&pollServiceStub{}, &voteServiceStub{
		castFn: func(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error) {
			captured = input
			return &domain.Vote{ID: "vote-1", PollID: input.PollID, UserID: input.UserID, OptionID: input.OptionID}, nil
		},
	})

	body, _ := json.Marshal(dto.CastVoteRequest{OptionID: "opt-2"})
	req := httptest.NewRequest(http.MethodPost, "/polls/poll-1/votes", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "poll-1")
	req = withUserID(req, "user-7")
	rec := httptest.NewRecorder()

	handler.Vote(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.PollID != "poll-1" || captured.UserID != "user-7" || captured.OptionID != "opt-2" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestPollHandler_Vote_RequiresUser(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{}, &voteServiceStub{
		castFn: func(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error) {
			t.Fatal("CastVote should not be called without a user")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.CastVoteRequest{OptionID: "opt-1"})
	req := httptest.NewRequest(http.MethodPost, "/polls/poll-1/votes", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "poll-1")
	rec := httptest.NewRecorder()

	handler.Vote(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPollHandler_Vote_Duplicate(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{}, &voteServiceStub{
		castFn: func(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error) {
			return nil, domain.ErrAlreadyVoted
		},
	})

	body, _ := json.Marshal(dto.CastVoteRequest{OptionID: "opt-1"})
	req := httptest.NewRequest(http.MethodPost, "/polls/poll-1/votes", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "poll-1")
	req = withUserID(req, "user-7")
	rec := httptest.NewRecorder()

	handler.Vote(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPollHandler_Vote_ClosedPoll(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{}, &voteServiceStub{
		castFn: func(ctx context.Context, input usecase.CastVoteInput) (*domain.Vote, error) {
			return nil, domain.ErrPollClosed
		},
	})

	body, _ := json.Marshal(dto.CastVoteRequest{OptionID: "opt-1"})
	req := httptest.NewRequest(http.MethodPost, "/polls/poll-1/votes", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "poll-1")
	req = withUserID(req, "user-7")
	rec := httptest.NewRecorder()

	handler.Vote(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestPollHandler_Close(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		closeFn: func(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
			if pollID != "poll-1" {
				t.Fatalf("expected poll-1, got %s", pollID)
			}
			if actorID != "admin-1" {
				t.Fatalf("expected actor admin-1, got %s", actorID)
			}
			poll := testPoll()
			poll.Closed = true
			return poll, nil
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/polls/poll-1/close", nil)
	req = setChiURLParam(req, "id", "poll-1")
	req = withUserID(req, "admin-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.PollStatusClosed) {
		t.Fatalf("expected closed status, got %s", resp.Status)
	}
	// Everyone sees results once the poll is closed.
	if resp.TotalVotes == nil {
		t.Fatal("expected total votes visible on a closed poll")
	}
}

func TestPollHandler_Close_ServiceError(t *testing.T) {
	handler := NewPollHandler(&pollServiceStub{
		closeFn: func(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
			return nil, errors.New("db error")
		},
	}, &voteServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/polls/poll-1/close", nil)
	req = setChiURLParam(req, "id", "poll-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDContextKey, userID))
}
