package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/audit"
	"github.com/synergyai/orchestrator-server-go/internal/errors"
	"github.com/synergyai/orchestrator-server-go/internal/model"
	"github.com/synergyai/orchestrator-server-go/internal/repository"
)

type EntitlementService struct {
	entitlementRepo repository.EntitlementRepository
}

func NewEntitlementService(entitlementRepo repository.EntitlementRepository) *EntitlementService {
	return &EntitlementService{
		entitlementRepo: entitlementRepo,
	}
}

// Ensure returns the user's entitlement record, creating a free-tier one
// on first sight. Called on every authenticated request.
func (s *EntitlementService) Ensure(ctx context.Context, userID string) (*model.Entitlement, error) {
	ent, err := s.entitlementRepo.CreateIfAbsent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure entitlement: %w", err)
	}
	if ent == nil {
		return nil, errors.Internal("entitlement record missing after ensure")
	}
	return ent, nil
}

func (s *EntitlementService) Get(ctx context.Context, userID string) (*model.Entitlement, error) {
	ent, err := s.entitlementRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find entitlement: %w", err)
	}
	if ent == nil {
		return nil, errors.NotFound("entitlement")
	}
	return ent, nil
}

// Upgrade flips the user to the unmetered tier. Idempotent.
func (s *EntitlementService) Upgrade(ctx context.Context, userID string) (*model.Entitlement, error) {
	ent, err := s.entitlementRepo.SetPremium(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("set premium: %w", err)
	}
	if ent == nil {
		return nil, errors.NotFound("entitlement")
	}

	log.Info().
		Str("userId", userID).
		Msg("user upgraded to premium")

	audit.Log(ctx, audit.Event{
		Type:   audit.EventTierChange,
		UserID: userID,
		Details: map[string]interface{}{
			"is_premium": true,
		},
	})

	return ent, nil
}
