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

type SessionHandler struct {
	sessionService  *service.SessionService
	exchangeService *service.ExchangeService
}

func NewSessionHandler(sessionService *service.SessionService, exchangeService *service.ExchangeService) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		exchangeService: exchangeService,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)
	r.Get("/", h.ListSessions)
	r.Get("/{sessionID}", h.GetSession)
	r.Post("/{sessionID}/turns", h.SubmitTurn)

	return r
}

// POST /v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	session, err := h.sessionService.CreateSession(ctx, userID)
	if err != nil {
		if !errors.IsAppError(err) {
			log.Error().Err(err).Str("userId", userID).Msg("failed to create session")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// GET /v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	summaries, err := h.sessionService.ListSessions(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to list sessions")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
}

// GET /v1/sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	session, err := h.sessionService.SelectSession(ctx, userID, sessionID)
	if err != nil {
		if !errors.IsAppError(err) {
			log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to load session")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type submitTurnRequest struct {
	Task string `json:"task"`
}

// POST /v1/sessions/{sessionID}/turns
func (h *SessionHandler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req submitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	result, err := h.exchangeService.SubmitTurn(ctx, userID, sessionID, req.Task)
	if err != nil {
		if !errors.IsAppError(err) {
			log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to submit turn")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
