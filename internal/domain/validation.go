package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidPollTitle   = errors.New("invalid poll title")
	ErrInvalidOptionName  = errors.New("invalid option name")
	ErrNotEnoughOptions   = errors.New("poll needs at least two options")
	ErrDuplicateOptionID  = errors.New("duplicate option id within poll")
	ErrInvalidDescription = errors.New("invalid description")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxTitleLength       = 255
	MinTitleLength       = 3
	MaxDescriptionLength = 2000
	MinPollOptions       = 2
	MaxPollOptions       = 20
	MaxTransactionAmount = "1000000000000" // 1 trillion, minor units
)

// ValidatePollTitle validates a poll title.
func ValidatePollTitle(title string) error {
	title = strings.TrimSpace(title)

	if len(title) < MinTitleLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidPollTitle, MinTitleLength)
	}

	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidPollTitle, MaxTitleLength)
	}

	return nil
}

// ValidateOptions validates the option set of a poll being created.
func ValidateOptions(options []Option) error {
	if len(options) < MinPollOptions {
		return ErrNotEnoughOptions
	}

	if len(options) > MaxPollOptions {
		return fmt.Errorf("%w: at most %d options", ErrInvalidOptionName, MaxPollOptions)
	}

	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt.Name) == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrInvalidOptionName)
		}

		if opt.ID != "" && seen[opt.ID] {
			return ErrDuplicateOptionID
		}

		seen[opt.ID] = true
	}

	return nil
}

// ValidateDescription validates free-text descriptions.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return nil
}

// ValidateAmount validates a transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxTransactionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
