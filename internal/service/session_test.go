package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/model"
)

func TestSessionService_CreateSession(t *testing.T) {
	t.Run("creates session and charges the allowance", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		entitlementRepo.On("FindByUserID", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 0}, nil)
		sessionRepo.On("Create", ctx, mock.MatchedBy(func(p model.CreateSessionParams) bool {
			return p.UserID == "user-1" && p.Title == "New Task" && p.ID != ""
		})).Return(&model.Session{ID: "sess-1", UserID: "user-1", Title: "New Task"}, nil)
		entitlementRepo.On("IncrementSessionsCreated", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 1}, nil)

		session, err := svc.CreateSession(ctx, "user-1")

		assert.NoError(t, err)
		assert.NotNil(t, session)
		assert.Equal(t, "sess-1", session.ID)
		sessionRepo.AssertExpectations(t)
		entitlementRepo.AssertExpectations(t)
	})

	t.Run("rejects second free session", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		entitlementRepo.On("FindByUserID", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 1}, nil)

		session, err := svc.CreateSession(ctx, "user-1")

		assert.Nil(t, session)
		assert.Equal(t, errors.ErrCodeQuotaExceeded, errors.GetCode(err))
		sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("premium users are unmetered", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		entitlementRepo.On("FindByUserID", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 42, IsPremium: true}, nil)
		sessionRepo.On("Create", ctx, mock.Anything).
			Return(&model.Session{ID: "sess-43", UserID: "user-1"}, nil)
		entitlementRepo.On("IncrementSessionsCreated", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 43, IsPremium: true}, nil)

		session, err := svc.CreateSession(ctx, "user-1")

		assert.NoError(t, err)
		assert.NotNil(t, session)
	})

	t.Run("rolls back the session when a concurrent creation wins", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		entitlementRepo.On("FindByUserID", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 0}, nil)
		sessionRepo.On("Create", ctx, mock.Anything).
			Return(&model.Session{ID: "sess-1", UserID: "user-1"}, nil)
		entitlementRepo.On("IncrementSessionsCreated", ctx, "user-1").Return(nil, nil)
		sessionRepo.On("Delete", ctx, "sess-1").Return(nil)

		session, err := svc.CreateSession(ctx, "user-1")

		assert.Nil(t, session)
		assert.Equal(t, errors.ErrCodeQuotaExceeded, errors.GetCode(err))
		sessionRepo.AssertCalled(t, "Delete", ctx, "sess-1")
	})

	t.Run("returns error when entitlement is missing", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		entitlementRepo.On("FindByUserID", ctx, "user-unknown").Return(nil, nil)

		session, err := svc.CreateSession(ctx, "user-unknown")

		assert.Nil(t, session)
		assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	})
}

func TestSessionService_ListSessions(t *testing.T) {
	t.Run("returns summaries", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		sessionRepo.On("ListByUserID", ctx, "user-1").Return([]model.SessionSummary{
			{ID: "sess-2", Title: "newer"},
			{ID: "sess-1", Title: "older"},
		}, nil)

		summaries, err := svc.ListSessions(ctx, "user-1")

		assert.NoError(t, err)
		assert.Len(t, summaries, 2)
		assert.Equal(t, "sess-2", summaries[0].ID)
	})
}

func TestSessionService_SelectSession(t *testing.T) {
	t.Run("returns session with transcript", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		sessionRepo.On("FindByID", ctx, "sess-1").
			Return(&model.Session{ID: "sess-1", UserID: "user-1", Transcript: model.Transcript{
				{Role: model.RoleUser, Content: "hi"},
				{Role: model.RoleAssistant, Content: "hello"},
			}}, nil)

		session, err := svc.SelectSession(ctx, "user-1", "sess-1")

		assert.NoError(t, err)
		assert.Len(t, session.Transcript, 2)
	})

	t.Run("hides sessions owned by someone else", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		sessionRepo.On("FindByID", ctx, "sess-1").
			Return(&model.Session{ID: "sess-1", UserID: "user-2"}, nil)

		session, err := svc.SelectSession(ctx, "user-1", "sess-1")

		assert.Nil(t, session)
		assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	})

	t.Run("returns not found for unknown session", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		svc := NewSessionService(sessionRepo, entitlementRepo, NewExchangeGuard())

		ctx := context.Background()
		sessionRepo.On("FindByID", ctx, "sess-missing").Return(nil, nil)

		session, err := svc.SelectSession(ctx, "user-1", "sess-missing")

		assert.Nil(t, session)
		assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	})

	t.Run("rejects switching to a session mid-exchange", func(t *testing.T) {
		sessionRepo := new(mockSessionRepo)
		entitlementRepo := new(mockEntitlementRepo)
		guard := NewExchangeGuard()
		svc := NewSessionService(sessionRepo, entitlementRepo, guard)

		guard.TryAcquire("sess-1")
		defer guard.Release("sess-1")

		session, err := svc.SelectSession(context.Background(), "user-1", "sess-1")

		assert.Nil(t, session)
		assert.Equal(t, errors.ErrCodeExchangeInProgress, errors.GetCode(err))
		sessionRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
