package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/synergyai/orchestrator-server-go/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
	ListByUserID(ctx context.Context, userID string) ([]model.SessionSummary, error)
	// UpdateExchange commits the two new turns, the advanced counter and
	// the refreshed title in one statement.
	UpdateExchange(ctx context.Context, id string, transcript model.Transcript, turnCount int, title string) (*model.Session, error)
	// FindTurnCountMismatches reports sessions whose stored counter
	// disagrees with the number of completed exchanges in the transcript.
	FindTurnCountMismatches(ctx context.Context, limit int) ([]model.TranscriptMismatch, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (id, user_id, title, transcript, turn_count)
		VALUES ($1, $2, $3, '[]', 0)
		RETURNING *
	`, params.ID, params.UserID, params.Title)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE id = $1
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) ListByUserID(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	summaries := []model.SessionSummary{}
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT id, user_id, title, turn_count, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *sessionRepo) UpdateExchange(ctx context.Context, id string, transcript model.Transcript, turnCount int, title string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		UPDATE sessions SET
			transcript = $2,
			turn_count = $3,
			title = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, transcript, turnCount, title)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id = $1
	`, id)
	return err
}

func (r *sessionRepo) FindTurnCountMismatches(ctx context.Context, limit int) ([]model.TranscriptMismatch, error) {
	mismatches := []model.TranscriptMismatch{}
	err := r.db.SelectContext(ctx, &mismatches, `
		SELECT id AS session_id, user_id, turn_count, completed_exchanges
		FROM (
			SELECT id, user_id, turn_count,
				(SELECT COUNT(*)
				 FROM jsonb_array_elements(transcript) AS turn
				 WHERE turn->>'role' = 'assistant') AS completed_exchanges
			FROM sessions
		) counted
		WHERE turn_count <> completed_exchanges
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return mismatches, nil
}
