package domain

import (
	"math"
	"time"
)

// PollStatus is derived from the poll's timestamps, never persisted.
type PollStatus string

const (
	PollStatusUpcoming PollStatus = "upcoming"
	PollStatusActive   PollStatus = "active"
	PollStatusClosed   PollStatus = "closed"
)

// Option is a single choice within a poll.
type Option struct {
	ID          string
	Name        string
	Description string
	Votes       int64
}

// Poll is a decision item users vote on. TotalVotes mirrors the count of
// committed vote rows and the sum of option counters; both are maintained
// by atomic increments inside the cast-vote transaction.
type Poll struct {
	ID          string
	Title       string
	Description string
	Options     []Option
	TotalVotes  int64
	CreatedAt   time.Time
	EndDate     *time.Time
	Closed      bool
	UpdatedAt   time.Time
}

// Status derives the lifecycle state at the given instant. The same clock
// value must be used for the read and the write side of one request.
func (p *Poll) Status(now time.Time) PollStatus {
	if p.Closed {
		return PollStatusClosed
	}

	if now.Before(p.CreatedAt) {
		return PollStatusUpcoming
	}

	if p.EndDate != nil && !now.Before(*p.EndDate) {
		return PollStatusClosed
	}

	return PollStatusActive
}

// CanVote reports whether a vote is accepted at the given instant.
func (p *Poll) CanVote(now time.Time) error {
	switch p.Status(now) {
	case PollStatusUpcoming:
		return ErrPollNotStarted
	case PollStatusClosed:
		return ErrPollClosed
	}

	return nil
}

// FindOption returns the option with the given ID.
func (p *Poll) FindOption(optionID string) (*Option, error) {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i], nil
		}
	}

	return nil, ErrOptionNotFound
}

// Percentage returns the rounded share of optionVotes in totalVotes.
// Each option rounds independently, so percentages across a poll are not
// guaranteed to sum to 100.
func Percentage(optionVotes, totalVotes int64) int {
	if totalVotes <= 0 {
		return 0
	}

	return int(math.Round(float64(optionVotes) / float64(totalVotes) * 100))
}
