package middleware

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/services"
)

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	tokens    ports.TokenStore
	log       zerolog.Logger
}

func NewAuthMiddleware(publicKey *rsa.PublicKey, tokens ports.TokenStore, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		publicKey: publicKey,
		tokens:    tokens,
		log:       log,
	}
}

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom returns the identity stored by RequireRole.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// WithIdentity stores id in ctx the way RequireRole does.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (m *AuthMiddleware) RequireRole(roles []domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			m.log.Debug().Msg("missing authorization header")
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		token, ok := BearerToken(r)
		if !ok {
			m.log.Debug().Msg("invalid authorization header format")
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := services.ParseSessionToken(m.publicKey, token)
		if err != nil {
			m.log.Debug().Err(err).Msg("token rejected")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		revoked, err := m.tokens.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			m.log.Error().Err(err).Msg("token revocation check failed")
			http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
			return
		}
		if revoked {
			http.Error(w, "token revoked", http.StatusUnauthorized)
			return
		}

		since, ok, err := m.tokens.RevokedSince(r.Context(), claims.Subject)
		if err != nil {
			m.log.Error().Err(err).Msg("subject revocation check failed")
			http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
			return
		}
		if ok && (claims.IssuedAt == nil || claims.IssuedAt.Time.Before(since)) {
			m.log.Debug().Str("subject", claims.Subject).Msg("account removed")
			http.Error(w, "token revoked", http.StatusUnauthorized)
			return
		}

		id := claims.Identity()
		allowed := false
		for _, role := range roles {
			if id.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			m.log.Debug().Str("role", string(id.Role)).Msg("role not allowed")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
