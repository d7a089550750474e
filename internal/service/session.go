package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/audit"
	"github.com/synergyai/orchestrator-server-go/internal/config"
	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/model"
	"github.com/synergyai/orchestrator-server-go/internal/quota"
	"github.com/synergyai/orchestrator-server-go/internal/repository"
)

type SessionService struct {
	sessionRepo     repository.SessionRepository
	entitlementRepo repository.EntitlementRepository
	guard           *ExchangeGuard
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	entitlementRepo repository.EntitlementRepository,
	guard *ExchangeGuard,
) *SessionService {
	return &SessionService{
		sessionRepo:     sessionRepo,
		entitlementRepo: entitlementRepo,
		guard:           guard,
	}
}

// CreateSession opens a new empty session for the user, charging one
// unit of the free-tier session allowance.
func (s *SessionService) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	ent, err := s.entitlementRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find entitlement: %w", err)
	}
	if ent == nil {
		return nil, errors.NotFound("entitlement")
	}

	if !quota.CanCreateSession(ent) {
		audit.Log(ctx, audit.Event{
			Type:   audit.EventQuotaExceeded,
			UserID: userID,
			Details: map[string]interface{}{
				"resource":         "sessions",
				"sessions_created": ent.SessionsCreated,
			},
		})
		return nil, errors.QuotaExceeded("free tier allows one session; upgrade to create more")
	}

	session, err := s.sessionRepo.Create(ctx, model.CreateSessionParams{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  config.DefaultSessionTitle,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	// The guarded increment serializes concurrent creations. A nil
	// result means another request spent the last free slot first.
	updated, err := s.entitlementRepo.IncrementSessionsCreated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("increment sessions created: %w", err)
	}
	if updated == nil {
		if delErr := s.sessionRepo.Delete(ctx, session.ID); delErr != nil {
			log.Error().Err(delErr).
				Str("sessionId", session.ID).
				Msg("failed to roll back session after lost quota race")
		}
		return nil, errors.QuotaExceeded("free tier allows one session; upgrade to create more")
	}

	log.Info().
		Str("sessionId", session.ID).
		Str("userId", userID).
		Int("sessionsCreated", updated.SessionsCreated).
		Msg("session created")

	audit.Log(ctx, audit.Event{
		Type:      audit.EventSessionCreate,
		UserID:    userID,
		SessionID: session.ID,
		Details: map[string]interface{}{
			"sessions_created": updated.SessionsCreated,
		},
	})

	return session, nil
}

// ListSessions returns the user's sessions newest first, without
// transcripts.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	summaries, err := s.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return summaries, nil
}

// SelectSession loads a session with its full transcript for display.
// A session with an exchange mid-flight cannot be switched to.
func (s *SessionService) SelectSession(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	if s.guard.InFlight(sessionID) {
		return nil, errors.ExchangeInProgress()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || session.UserID != userID {
		// Ownership failures are indistinguishable from absence.
		return nil, errors.NotFound("session")
	}

	return session, nil
}
