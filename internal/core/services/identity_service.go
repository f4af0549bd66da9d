package services

import (
	"context"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// IdentityService decides which role a pair of credentials belongs to.
// Precedence is fixed: admin, then educators, then enrollments (parents).
type IdentityService struct {
	adminEmail  string
	adminHash   string
	educators   ports.EducatorRepository
	enrollments ports.EnrollmentRepository
}

func NewIdentityService(
	adminEmail, adminPasswordHash string,
	educators ports.EducatorRepository,
	enrollments ports.EnrollmentRepository,
) *IdentityService {
	return &IdentityService{
		adminEmail:  normalizeEmail(adminEmail),
		adminHash:   adminPasswordHash,
		educators:   educators,
		enrollments: enrollments,
	}
}

func (s *IdentityService) Resolve(ctx context.Context, email, password string) (domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	if s.adminEmail != "" && email == s.adminEmail {
		if s.adminHash != "" && CheckPassword(s.adminHash, password) {
			return domain.Identity{
				ID:    "admin",
				Role:  domain.RoleAdmin,
				Name:  "Administrator",
				Email: s.adminEmail,
			}, nil
		}
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	educators, err := s.educators.FindEducatorsByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, domain.StoreError("find educator", err)
	}
	switch len(educators) {
	case 0:
	case 1:
		if !CheckPassword(educators[0].PasswordHash, password) {
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return educators[0].Identity(), nil
	default:
		return domain.Identity{}, domain.ErrAmbiguousLookup
	}

	parents, err := s.enrollments.FindEnrollmentsByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, domain.StoreError("find enrollment", err)
	}
	switch len(parents) {
	case 0:
		return domain.Identity{}, domain.ErrInvalidCredentials
	case 1:
		if !CheckPassword(parents[0].PasswordHash, password) {
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return parents[0].Identity(), nil
	default:
		return domain.Identity{}, domain.ErrAmbiguousLookup
	}
}

// EmailInUse reports whether any account already owns email.
func (s *IdentityService) EmailInUse(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == s.adminEmail {
		return true, nil
	}
	educators, err := s.educators.FindEducatorsByEmail(ctx, email)
	if err != nil {
		return false, domain.StoreError("find educator", err)
	}
	if len(educators) > 0 {
		return true, nil
	}
	parents, err := s.enrollments.FindEnrollmentsByEmail(ctx, email)
	if err != nil {
		return false, domain.StoreError("find enrollment", err)
	}
	return len(parents) > 0, nil
}
