package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/synergyai/orchestrator-server-go/internal/audit"
	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/model"
	"github.com/synergyai/orchestrator-server-go/internal/repository"
)

const feedbackMaxLen = 4000

type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo}
}

func (s *FeedbackService) Submit(ctx context.Context, userID *string, body string) (*model.Feedback, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.MissingRequired("body")
	}
	if len(body) > feedbackMaxLen {
		return nil, errors.InvalidInput("body", "too long")
	}

	fb, err := s.feedbackRepo.Create(ctx, model.CreateFeedbackParams{
		UserID: userID,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	event := audit.Event{
		Type: audit.EventFeedbackSubmit,
		Details: map[string]interface{}{
			"feedback_id": fb.ID,
		},
	}
	if userID != nil {
		event.UserID = *userID
	}
	audit.Log(ctx, event)

	return fb, nil
}
