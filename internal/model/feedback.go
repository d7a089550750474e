package model

import (
	"time"
)

// Feedback is a fire-and-forget user note. No invariants.
type Feedback struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"userId,omitempty"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateFeedbackParams struct {
	UserID *string
	Body   string
}
