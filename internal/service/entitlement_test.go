package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/model"
)

func TestEntitlementService_Ensure(t *testing.T) {
	t.Run("creates a free-tier record on first sight", func(t *testing.T) {
		repo := new(mockEntitlementRepo)
		svc := NewEntitlementService(repo)

		ctx := context.Background()
		repo.On("CreateIfAbsent", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 0, IsPremium: false}, nil)

		ent, err := svc.Ensure(ctx, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", ent.UserID)
		assert.False(t, ent.IsPremium)
		repo.AssertExpectations(t)
	})

	t.Run("leaves an existing record untouched", func(t *testing.T) {
		repo := new(mockEntitlementRepo)
		svc := NewEntitlementService(repo)

		ctx := context.Background()
		repo.On("CreateIfAbsent", ctx, "user-1").
			Return(&model.Entitlement{UserID: "user-1", SessionsCreated: 1, IsPremium: true}, nil)

		ent, err := svc.Ensure(ctx, "user-1")

		assert.NoError(t, err)
		assert.True(t, ent.IsPremium)
		assert.Equal(t, 1, ent.SessionsCreated)
	})

	t.Run("returns error when repository fails", func(t *testing.T) {
		repo := new(mockEntitlementRepo)
		svc := NewEntitlementService(repo)

		ctx := context.Background()
		repo.On("CreateIfAbsent", ctx, "user-1").Return(nil, assert.AnError)

		ent, err := svc.Ensure(ctx, "user-1")

		assert.Nil(t, ent)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ensure entitlement")
	})
}

func TestEntitlementService_Upgrade(t *testing.T) {
	t.Run("flips the user to premium", func(t *testing.T) {
		repo := new(mockEntitlementRepo)
		svc := NewEntitlementService(repo)

		ctx := context.Background()
		repo.On("SetPremium", ctx, "user-1", true).
			Return(&model.Entitlement{UserID: "user-1", IsPremium: true}, nil)

		ent, err := svc.Upgrade(ctx, "user-1")

		assert.NoError(t, err)
		assert.True(t, ent.IsPremium)
		repo.AssertExpectations(t)
	})

	t.Run("returns not found for unknown user", func(t *testing.T) {
		repo := new(mockEntitlementRepo)
		svc := NewEntitlementService(repo)

		ctx := context.Background()
		repo.On("SetPremium", ctx, "user-unknown", true).Return(nil, nil)

		ent, err := svc.Upgrade(ctx, "user-unknown")

		assert.Nil(t, ent)
		assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	})
}
