package domain

import "time"

// Vote records that a user voted for one option of a poll. Votes are
// append-only: never edited, never deleted. A unique (PollID, UserID)
// index in storage is the exactly-once-participation boundary.
type Vote struct {
	ID        string
	PollID    string
	UserID    string
	OptionID  string
	CreatedAt time.Time
}
