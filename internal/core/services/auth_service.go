package services

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

const sessionTTL = 24 * time.Hour

// SessionClaims are the JWT claims of a session token.
type SessionClaims struct {
	Role      string `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Program   string `json:"program,omitempty"`
	ChildName string `json:"child_name,omitempty"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) Identity() domain.Identity {
	return domain.Identity{
		ID:        c.Subject,
		Role:      domain.Role(c.Role),
		Name:      c.Name,
		Email:     c.Email,
		Program:   c.Program,
		ChildName: c.ChildName,
	}
}

// ParseSessionToken verifies an RS256 session token.
func ParseSessionToken(publicKey *rsa.PublicKey, token string) (*SessionClaims, error) {
	t, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := t.Claims.(*SessionClaims)
	if !ok || !t.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" || claims.Role == "" || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

type AuthService struct {
	identity   *IdentityService
	privateKey *rsa.PrivateKey
	tokens     ports.TokenStore
	now        func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(identity *IdentityService, privateKey *rsa.PrivateKey, tokens ports.TokenStore) *AuthService {
	return &AuthService{
		identity:   identity,
		privateKey: privateKey,
		tokens:     tokens,
		now:        time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	id, err := s.identity.Resolve(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.IssueToken(id)
	if err != nil {
		return nil, err
	}
	return &ports.Session{Identity: id, Token: token}, nil
}

// IssueToken signs a session token for an already resolved identity.
func (s *AuthService) IssueToken(id domain.Identity) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Role:      string(id.Role),
		Name:      id.Name,
		Email:     id.Email,
		Program:   id.Program,
		ChildName: id.ChildName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := ParseSessionToken(&s.privateKey.PublicKey, token)
	if err != nil {
		return domain.ErrInvalidCredentials
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return domain.StoreError("revoke token", err)
	}
	return nil
}

