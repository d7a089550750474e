package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/synergyai/orchestrator-server-go/internal/model"
)

type FeedbackRepository interface {
	Create(ctx context.Context, params model.CreateFeedbackParams) (*model.Feedback, error)
}

type feedbackRepo struct {
	db *sqlx.DB
}

func NewFeedbackRepository(db *sqlx.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, params model.CreateFeedbackParams) (*model.Feedback, error) {
	var fb model.Feedback
	err := r.db.GetContext(ctx, &fb, `
		INSERT INTO feedback (user_id, body)
		VALUES ($1, $2)
		RETURNING *
	`, params.UserID, params.Body)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
