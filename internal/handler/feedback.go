package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/middleware"
	"github.com/synergyai/orchestrator-server-go/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

func (h *FeedbackHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Submit)

	return r
}

type submitFeedbackRequest struct {
	Body string `json:"body"`
}

// POST /v1/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	var userID *string
	if id := middleware.GetUserID(ctx); id != "" {
		userID = &id
	}

	fb, err := h.feedbackService.Submit(ctx, userID, req.Body)
	if err != nil {
		if !errors.IsAppError(err) {
			log.Error().Err(err).Msg("failed to submit feedback")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}
