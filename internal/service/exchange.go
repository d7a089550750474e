package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/audit"
	"github.com/synergyai/orchestrator-server-go/internal/config"
	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/model"
	"github.com/synergyai/orchestrator-server-go/internal/quota"
	"github.com/synergyai/orchestrator-server-go/internal/repository"
	"github.com/synergyai/orchestrator-server-go/internal/sse"
	"github.com/synergyai/orchestrator-server-go/internal/util"
)

// EventPublisher fans exchange progress out to the user's live streams.
type EventPublisher interface {
	Publish(ctx context.Context, userID string, event sse.Event) error
}

type ExchangeResult struct {
	Session       *model.Session `json:"session"`
	UserTurn      model.Turn     `json:"userTurn"`
	AssistantTurn model.Turn     `json:"assistantTurn"`
}

type ExchangeService struct {
	sessionRepo     repository.SessionRepository
	entitlementRepo repository.EntitlementRepository
	dispatcher      DispatchClient
	guard           *ExchangeGuard
	events          EventPublisher
}

func NewExchangeService(
	sessionRepo repository.SessionRepository,
	entitlementRepo repository.EntitlementRepository,
	dispatcher DispatchClient,
	guard *ExchangeGuard,
	events EventPublisher,
) *ExchangeService {
	return &ExchangeService{
		sessionRepo:     sessionRepo,
		entitlementRepo: entitlementRepo,
		dispatcher:      dispatcher,
		guard:           guard,
		events:          events,
	}
}

// SubmitTurn runs one full exchange: the task is handed to the external
// responder and both turns land in the transcript together, or neither
// does. Nothing is persisted before the responder has answered, so a
// failed dispatch can simply be retried.
func (s *ExchangeService) SubmitTurn(ctx context.Context, userID, sessionID, task string) (*ExchangeResult, error) {
	task = util.NormalizeTask(task)
	if task == "" {
		return nil, errors.MissingRequired("task")
	}

	if !s.guard.TryAcquire(sessionID) {
		return nil, errors.ExchangeInProgress()
	}
	defer s.guard.Release(sessionID)

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, errors.NotFound("session")
	}

	ent, err := s.entitlementRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find entitlement: %w", err)
	}
	if ent == nil {
		return nil, errors.NotFound("entitlement")
	}

	if !quota.CanExchange(ent, session.TurnCount) {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventQuotaExceeded,
			UserID:    userID,
			SessionID: sessionID,
			Details: map[string]interface{}{
				"resource":   "turns",
				"turn_count": session.TurnCount,
			},
		})
		return nil, errors.QuotaExceeded("free tier allows five exchanges per session; upgrade for unlimited")
	}

	userTurn := model.Turn{
		Role:      model.RoleUser,
		Content:   task,
		Timestamp: time.Now().UTC(),
	}

	s.publish(ctx, userID, sse.EventExchangeStarted, map[string]interface{}{
		"sessionId": sessionID,
	})
	// The user turn is visible to other tabs right away, even though it
	// is not durable until the exchange completes.
	s.publish(ctx, userID, sse.EventTurn, map[string]interface{}{
		"sessionId": sessionID,
		"turn":      userTurn,
	})

	reply, err := s.dispatcher.Dispatch(ctx, task)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventDispatchFailure,
			UserID:    userID,
			SessionID: sessionID,
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		})
		s.publish(ctx, userID, sse.EventExchangeFailed, map[string]interface{}{
			"sessionId": sessionID,
			"reason":    "dispatch_failed",
		})
		return nil, errors.DispatchFailed(err).WithDetails(map[string]interface{}{
			"userTurn": userTurn,
		})
	}

	assistantTurn := model.Turn{
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}

	transcript := make(model.Transcript, 0, len(session.Transcript)+2)
	transcript = append(transcript, session.Transcript...)
	transcript = append(transcript, userTurn, assistantTurn)

	title := util.Truncate(task, config.SessionTitleMaxLen)

	updated, err := s.sessionRepo.UpdateExchange(ctx, sessionID, transcript, session.TurnCount+1, title)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventPersistenceFailure,
			UserID:    userID,
			SessionID: sessionID,
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		})
		s.publish(ctx, userID, sse.EventExchangeFailed, map[string]interface{}{
			"sessionId": sessionID,
			"reason":    "persistence_failed",
		})
		// The responder answered but the transcript write failed. Both
		// turns ride along so the caller can surface the lost reply.
		return nil, errors.PersistenceFailed(err).WithDetails(map[string]interface{}{
			"userTurn":      userTurn,
			"assistantTurn": assistantTurn,
		})
	}
	if updated == nil {
		return nil, errors.NotFound("session")
	}

	s.publish(ctx, userID, sse.EventTurn, map[string]interface{}{
		"sessionId": sessionID,
		"turn":      assistantTurn,
	})

	log.Info().
		Str("sessionId", sessionID).
		Str("userId", userID).
		Int("turnCount", updated.TurnCount).
		Msg("exchange completed")

	audit.Log(ctx, audit.Event{
		Type:      audit.EventExchangeComplete,
		UserID:    userID,
		SessionID: sessionID,
		Details: map[string]interface{}{
			"turn_count": updated.TurnCount,
		},
	})

	return &ExchangeResult{
		Session:       updated,
		UserTurn:      userTurn,
		AssistantTurn: assistantTurn,
	}, nil
}

func (s *ExchangeService) publish(ctx context.Context, userID, eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to marshal event payload")
		return
	}

	if err := s.events.Publish(ctx, userID, sse.Event{Type: eventType, Data: data}); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("failed to publish event")
	}
}
