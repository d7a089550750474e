package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/middleware"
	"github.com/synergyai/orchestrator-server-go/internal/service"
)

type EntitlementHandler struct {
	entitlementService *service.EntitlementService
}

func NewEntitlementHandler(entitlementService *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

func (h *EntitlementHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetMe)
	r.Post("/upgrade", h.Upgrade)

	return r
}

// GET /v1/me
func (h *EntitlementHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	// Auth already ensured the record exists for this request.
	ent := middleware.GetEntitlement(r.Context())
	if ent == nil {
		writeError(w, errors.NotFound("entitlement"))
		return
	}

	writeJSON(w, http.StatusOK, ent)
}

// POST /v1/me/upgrade
func (h *EntitlementHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	ent, err := h.entitlementService.Upgrade(ctx, userID)
	if err != nil {
		if !errors.IsAppError(err) {
			log.Error().Err(err).Str("userId", userID).Msg("failed to upgrade user")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ent)
}
