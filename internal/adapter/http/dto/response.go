package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

// OptionResponse represents a poll option in API responses. Votes and
// Percentage are omitted while results are hidden from the viewer.
type OptionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Votes       *int64 `json:"votes,omitempty"`
	Percentage  *int   `json:"percentage,omitempty"`
}

// PollResponse represents a poll in API responses, shaped for one viewer.
type PollResponse struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Status           string           `json:"status"`
	Options          []OptionResponse `json:"options"`
	TotalVotes       *int64           `json:"total_votes,omitempty"`
	HasVoted         bool             `json:"has_voted"`
	SelectedOptionID string           `json:"selected_option_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	EndDate          *time.Time       `json:"end_date,omitempty"`
}

// PollFromView converts a viewer-specific poll view to a response.
func PollFromView(view *usecase.PollView) *PollResponse {
	poll := view.Poll

	options := make([]OptionResponse, len(poll.Options))
	for i, opt := range poll.Options {
		options[i] = OptionResponse{
			ID:          opt.ID,
			Name:        opt.Name,
			Description: opt.Description,
		}

		if view.ResultsVisible {
			votes := opt.Votes
			pct := domain.Percentage(opt.Votes, poll.TotalVotes)
			options[i].Votes = &votes
			options[i].Percentage = &pct
		}
	}

	resp := &PollResponse{
		ID:               poll.ID,
		Title:            poll.Title,
		Description:      poll.Description,
		Status:           string(view.Status),
		Options:          options,
		HasVoted:         view.HasVoted,
		SelectedOptionID: view.SelectedOptionID,
		CreatedAt:        poll.CreatedAt,
		EndDate:          poll.EndDate,
	}

	if view.ResultsVisible {
		total := poll.TotalVotes
		resp.TotalVotes = &total
	}

	return resp
}

// PollsFromViews converts poll views to responses.
func PollsFromViews(views []*usecase.PollView) []*PollResponse {
	result := make([]*PollResponse, len(views))
	for i, v := range views {
		result[i] = PollFromView(v)
	}
	return result
}

// ListPollsResponse wraps a poll listing.
type ListPollsResponse struct {
	Polls []*PollResponse `json:"polls"`
	Total int64           `json:"total"`
}

// VoteResponse represents a cast vote in API responses.
type VoteResponse struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteFromDomain converts a domain vote to a response.
func VoteFromDomain(v *domain.Vote) *VoteResponse {
	return &VoteResponse{
		ID:        v.ID,
		PollID:    v.PollID,
		OptionID:  v.OptionID,
		CreatedAt: v.CreatedAt,
	}
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a ledger listing.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// SummaryResponse represents ledger totals in API responses.
type SummaryResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// SummaryFromDomain converts a domain summary to a response.
func SummaryFromDomain(s domain.Summary) *SummaryResponse {
	return &SummaryResponse{
		Income:  s.Income,
		Expense: s.Expense,
		Balance: s.Balance,
	}
}

// TallyMismatchResponse reports a poll whose tallies drifted.
type TallyMismatchResponse struct {
	PollID     string `json:"poll_id"`
	TotalVotes int64  `json:"total_votes"`
	VoteCount  int64  `json:"vote_count"`
	OptionSum  int64  `json:"option_sum"`
}

// ConsistencyResponse reports the outcome of a tally consistency check.
type ConsistencyResponse struct {
	Consistent bool                    `json:"consistent"`
	Mismatches []TallyMismatchResponse `json:"mismatches,omitempty"`
}

// ConsistencyFromMismatches builds a consistency response.
func ConsistencyFromMismatches(consistent bool, mismatches []usecase.TallyMismatch) *ConsistencyResponse {
	resp := &ConsistencyResponse{Consistent: consistent}
	for _, m := range mismatches {
		resp.Mismatches = append(resp.Mismatches, TallyMismatchResponse{
			PollID:     m.PollID,
			TotalVotes: m.TotalVotes,
			VoteCount:  m.VoteCount,
			OptionSum:  m.OptionSum,
		})
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
