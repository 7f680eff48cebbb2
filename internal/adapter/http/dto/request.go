package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/rukun/internal/domain"
	"github.com/iho/rukun/internal/usecase"
)

// CreatePollRequest represents a request to create a poll.
type CreatePollRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Options     []CreateOptionItem `json:"options"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
}

// CreateOptionItem represents a single option in a create poll request.
type CreateOptionItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePollRequest) ToUseCaseInput() usecase.CreatePollInput {
	options := make([]domain.Option, len(r.Options))
	for i, opt := range r.Options {
		options[i] = domain.Option{
			Name:        opt.Name,
			Description: opt.Description,
		}
	}

	return usecase.CreatePollInput{
		Title:       r.Title,
		Description: r.Description,
		Options:     options,
		EndDate:     r.EndDate,
	}
}

// CastVoteRequest represents a request to cast a vote.
type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// RecordTransactionRequest represents a request to append a ledger entry.
type RecordTransactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordTransactionRequest) ToUseCaseInput() usecase.RecordTransactionInput {
	return usecase.RecordTransactionInput{
		Type:        domain.TransactionType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
	}
}
