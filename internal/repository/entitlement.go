package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/synergyai/orchestrator-server-go/internal/model"
	"github.com/synergyai/orchestrator-server-go/internal/quota"
)

type EntitlementRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Entitlement, error)
	// CreateIfAbsent inserts a fresh free-tier record for the user, or
	// returns the existing one unchanged. Safe to call on every sign-in.
	CreateIfAbsent(ctx context.Context, userID string) (*model.Entitlement, error)
	// IncrementSessionsCreated advances the session counter by one in a
	// single guarded statement. Returns nil when the free-tier cap would
	// be exceeded (a concurrent creation won the race).
	IncrementSessionsCreated(ctx context.Context, userID string) (*model.Entitlement, error)
	SetPremium(ctx context.Context, userID string, premium bool) (*model.Entitlement, error)
}

type entitlementRepo struct {
	db *sqlx.DB
}

func NewEntitlementRepository(db *sqlx.DB) EntitlementRepository {
	return &entitlementRepo{db: db}
}

func (r *entitlementRepo) FindByUserID(ctx context.Context, userID string) (*model.Entitlement, error) {
	var ent model.Entitlement
	err := r.db.GetContext(ctx, &ent, `
		SELECT * FROM entitlements WHERE user_id = $1
	`, userID)
	return HandleNotFound(&ent, err)
}

func (r *entitlementRepo) CreateIfAbsent(ctx context.Context, userID string) (*model.Entitlement, error) {
	var ent model.Entitlement
	err := r.db.GetContext(ctx, &ent, `
		INSERT INTO entitlements (user_id, sessions_created, is_premium)
		VALUES ($1, 0, FALSE)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING *
	`, userID)
	if inserted, err := HandleNotFound(&ent, err); err != nil || inserted != nil {
		return inserted, err
	}

	// Conflict path: the record already existed.
	return r.FindByUserID(ctx, userID)
}

func (r *entitlementRepo) IncrementSessionsCreated(ctx context.Context, userID string) (*model.Entitlement, error) {
	// The row lock serializes concurrent increments; the guard keeps a
	// racing second tab from pushing a free account past the cap.
	var ent model.Entitlement
	err := r.db.GetContext(ctx, &ent, `
		UPDATE entitlements SET
			sessions_created = sessions_created + 1,
			updated_at = NOW()
		WHERE user_id = $1
		AND (is_premium OR sessions_created < $2)
		RETURNING *
	`, userID, quota.FreeSessionCap)
	return HandleNotFound(&ent, err)
}

func (r *entitlementRepo) SetPremium(ctx context.Context, userID string, premium bool) (*model.Entitlement, error) {
	var ent model.Entitlement
	err := r.db.GetContext(ctx, &ent, `
		UPDATE entitlements SET
			is_premium = $2,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING *
	`, userID, premium)
	return HandleNotFound(&ent, err)
}
