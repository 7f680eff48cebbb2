package domain

import "time"

// Event types
const (
	EventTypePollCreated         = "poll.created"
	EventTypePollClosed          = "poll.closed"
	EventTypeVoteCast            = "vote.cast"
	EventTypeTransactionRecorded = "transaction.recorded"
)

// Aggregate types
const (
	AggregateTypePoll        = "poll"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published. It is written in the
// same database transaction as the state change it describes.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// PollCreatedEvent payload
type PollCreatedEvent struct {
	PollID      string  `json:"poll_id"`
	Title       string  `json:"title"`
	OptionCount int     `json:"option_count"`
	EndDate     *string `json:"end_date,omitempty"`
}

// PollClosedEvent payload
type PollClosedEvent struct {
	PollID     string `json:"poll_id"`
	TotalVotes int64  `json:"total_votes"`
}

// VoteCastEvent payload
type VoteCastEvent struct {
	VoteID   string `json:"vote_id"`
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
}

// TransactionRecordedEvent payload
type TransactionRecordedEvent struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
}
