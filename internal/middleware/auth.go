package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/audit"
	"github.com/synergyai/orchestrator-server-go/internal/model"
)

type contextKey string

const (
	UserIDContextKey      contextKey = "userID"
	EntitlementContextKey contextKey = "entitlement"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDContextKey).(string); ok {
		return userID
	}
	return ""
}

func GetEntitlement(ctx context.Context) *model.Entitlement {
	if ent, ok := ctx.Value(EntitlementContextKey).(*model.Entitlement); ok {
		return ent
	}
	return nil
}

// EntitlementEnsurer upserts the entitlement record for an
// authenticated user.
type EntitlementEnsurer interface {
	Ensure(ctx context.Context, userID string) (*model.Entitlement, error)
}

type AuthMiddleware struct {
	secret       []byte
	entitlements EntitlementEnsurer
}

func NewAuthMiddleware(secret string, entitlements EntitlementEnsurer) *AuthMiddleware {
	return &AuthMiddleware{
		secret:       []byte(secret),
		entitlements: entitlements,
	}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing authentication token",
			})
			return
		}

		userID, err := m.parseUserID(token)
		if err != nil {
			log.Warn().Err(err).Msg("auth middleware: invalid token attempt")
			audit.LogFromRequest(r, audit.Event{
				Type: audit.EventAuthFailure,
				Details: map[string]interface{}{
					"reason": err.Error(),
				},
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
			return
		}

		ent, err := m.entitlements.Ensure(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("userId", userID).Msg("auth middleware: ensure entitlement")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		ctx = context.WithValue(ctx, EntitlementContextKey, ent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) parseUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}

	return sub, nil
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// EventSource cannot set headers, so the stream endpoint passes the
	// token in the query string.
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	return ""
}
