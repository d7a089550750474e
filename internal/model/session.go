package model

import (
	"time"
)

// Session is one user-initiated task with its own transcript and turn quota.
type Session struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	Title      string     `db:"title" json:"title"`
	Transcript Transcript `db:"transcript" json:"transcript"`
	TurnCount  int        `db:"turn_count" json:"turnCount"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateSessionParams struct {
	ID     string
	UserID string
	Title  string
}

// SessionSummary is the transcript-free projection used by the session
// switcher list.
type SessionSummary struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	TurnCount int       `db:"turn_count" json:"turnCount"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TranscriptMismatch reports a session whose stored turn counter disagrees
// with the completed exchanges actually present in its transcript.
type TranscriptMismatch struct {
	SessionID          string `db:"session_id" json:"sessionId"`
	UserID             string `db:"user_id" json:"userId"`
	TurnCount          int    `db:"turn_count" json:"turnCount"`
	CompletedExchanges int    `db:"completed_exchanges" json:"completedExchanges"`
}
