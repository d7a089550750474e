package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/synergyai/orchestrator-server-go/internal/model"
	"github.com/synergyai/orchestrator-server-go/internal/sse"
)

// Mock session repository
type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) ListByUserID(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionSummary), args.Error(1)
}

func (m *mockSessionRepo) UpdateExchange(ctx context.Context, id string, transcript model.Transcript, turnCount int, title string) (*model.Session, error) {
	args := m.Called(ctx, id, transcript, turnCount, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) FindTurnCountMismatches(ctx context.Context, limit int) ([]model.TranscriptMismatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TranscriptMismatch), args.Error(1)
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock entitlement repository
type mockEntitlementRepo struct {
	mock.Mock
}

func (m *mockEntitlementRepo) FindByUserID(ctx context.Context, userID string) (*model.Entitlement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *mockEntitlementRepo) CreateIfAbsent(ctx context.Context, userID string) (*model.Entitlement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *mockEntitlementRepo) IncrementSessionsCreated(ctx context.Context, userID string) (*model.Entitlement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *mockEntitlementRepo) SetPremium(ctx context.Context, userID string, premium bool) (*model.Entitlement, error) {
	args := m.Called(ctx, userID, premium)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

// Mock feedback repository
type mockFeedbackRepo struct {
	mock.Mock
}

func (m *mockFeedbackRepo) Create(ctx context.Context, params model.CreateFeedbackParams) (*model.Feedback, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Feedback), args.Error(1)
}

// Mock dispatch client
type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, task string) (string, error) {
	args := m.Called(ctx, task)
	return args.String(0), args.Error(1)
}

// Publisher that records events in memory
type captureEvents struct {
	published []sse.Event
}

func (p *captureEvents) Publish(ctx context.Context, userID string, event sse.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *captureEvents) types() []string {
	out := make([]string, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.Type)
	}
	return out
}
