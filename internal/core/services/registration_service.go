package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

type tokenIssuer interface {
	IssueToken(id domain.Identity) (string, error)
}

type RegistrationService struct {
	enrollments ports.EnrollmentRepository
	identity    *IdentityService
	issuer      tokenIssuer
	now         func() time.Time
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(
	enrollments ports.EnrollmentRepository,
	identity *IdentityService,
	issuer tokenIssuer,
) *RegistrationService {
	return &RegistrationService{
		enrollments: enrollments,
		identity:    identity,
		issuer:      issuer,
		now:         time.Now,
	}
}

// RegisterParent validates the form, stores the enrollment and returns a
// session for it so the parent is logged in straight away.
func (s *RegistrationService) RegisterParent(ctx context.Context, in ports.RegistrationInput) (*ports.Session, error) {
	in.ParentName = strings.TrimSpace(in.ParentName)
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	taken, err := s.identity.EmailInUse(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewValidationError(domain.FieldError{Field: "email", Message: "is already registered"})
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	enrollment := domain.Enrollment{
		ID:           uuid.NewString(),
		ParentName:   in.ParentName,
		ChildName:    in.ChildName,
		Email:        in.Email,
		Program:      domain.NormalizeProgram(in.Program),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	payload, err := json.Marshal(ports.EnrollmentCreatedEvent{
		EnrollmentID: enrollment.ID,
		ParentName:   enrollment.ParentName,
		ChildName:    enrollment.ChildName,
		Email:        enrollment.Email,
		Program:      enrollment.Program,
	})
	if err != nil {
		return nil, err
	}
	event := ports.OutboxEvent{
		ID:        uuid.NewString(),
		Type:      ports.EventEnrollmentCreated,
		Payload:   payload,
		CreatedAt: enrollment.CreatedAt,
	}

	if err := s.enrollments.CreateEnrollment(ctx, enrollment, event); err != nil {
		return nil, domain.StoreError("create enrollment", err)
	}

	id := enrollment.Identity()
	token, err := s.issuer.IssueToken(id)
	if err != nil {
		return nil, err
	}
	return &ports.Session{Identity: id, Token: token}, nil
}
