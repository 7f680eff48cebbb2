package domain

import "errors"

var (
	// Poll errors
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("option does not belong to poll")
	ErrPollClosed     = errors.New("poll is not open for voting")
	ErrPollNotStarted = errors.New("poll has not started yet")

	// Vote errors
	ErrAlreadyVoted = errors.New("user has already voted on this poll")
	ErrVoteNotFound = errors.New("vote not found")

	// Transaction errors
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
	ErrNegativeAmount         = errors.New("transaction amount must not be negative")
	ErrTransactionNotFound    = errors.New("transaction not found")

	// Identity errors
	ErrInvalidToken = errors.New("invalid identity token")
	ErrExpiredToken = errors.New("identity token has expired")
)
