package model

import (
	"time"
)

// Entitlement is the per-user record of tier and consumption counters.
// One row per user, created idempotently on first identity resolution.
type Entitlement struct {
	UserID          string    `db:"user_id" json:"userId"`
	SessionsCreated int       `db:"sessions_created" json:"sessionsCreated"`
	IsPremium       bool      `db:"is_premium" json:"isPremium"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}
