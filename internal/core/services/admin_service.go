package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// Collections that an administrator may delete from.
const (
	CollectionRegistrations = "registrations"
	CollectionEducators     = "educators"
	CollectionAttendance    = "attendance"
	CollectionNotices       = "notices"
)

type AdminService struct {
	enrollments ports.EnrollmentRepository
	educators   ports.EducatorRepository
	attendance  ports.AttendanceRepository
	notices     ports.NoticeRepository
	identity    *IdentityService
	tokens      ports.TokenStore
	now         func() time.Time
}

var _ ports.AdminService = (*AdminService)(nil)

func NewAdminService(
	enrollments ports.EnrollmentRepository,
	educators ports.EducatorRepository,
	attendance ports.AttendanceRepository,
	notices ports.NoticeRepository,
	identity *IdentityService,
	tokens ports.TokenStore,
) *AdminService {
	return &AdminService{
		enrollments: enrollments,
		educators:   educators,
		attendance:  attendance,
		notices:     notices,
		identity:    identity,
		tokens:      tokens,
		now:         time.Now,
	}
}

// CreateEducator stores a new educator with a generated password. The
// plaintext password is only returned here.
func (s *AdminService) CreateEducator(ctx context.Context, in ports.NewEducatorInput) (*ports.CreatedEducator, error) {
	in.Name = strings.TrimSpace(in.Name)
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

	password, err := generatePassword()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	educator := domain.Educator{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Program:      domain.NormalizeProgram(in.Program),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.educators.CreateEducator(ctx, educator); err != nil {
		return nil, domain.StoreError("create educator", err)
	}
	return &ports.CreatedEducator{Educator: educator, Password: password}, nil
}

func (s *AdminService) ListEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	list, err := s.enrollments.ListEnrollments(ctx)
	if err != nil {
		return nil, domain.StoreError("list enrollments", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *AdminService) ListEducators(ctx context.Context) ([]domain.Educator, error) {
	list, err := s.educators.ListEducators(ctx)
	if err != nil {
		return nil, domain.StoreError("list educators", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// AttendanceLog returns every attendance record, newest first.
func (s *AdminService) AttendanceLog(ctx context.Context) ([]domain.AttendanceRecord, error) {
	list, err := s.attendance.ListAttendance(ctx)
	if err != nil {
		return nil, domain.StoreError("list attendance", err)
	}
	return list, nil
}

func (s *AdminService) Revenue(ctx context.Context) (domain.Revenue, error) {
	list, err := s.enrollments.ListEnrollments(ctx)
	if err != nil {
		return domain.Revenue{}, domain.StoreError("list enrollments", err)
	}
	return domain.TotalRevenue(list), nil
}

func (s *AdminService) Overview(ctx context.Context) (*ports.Overview, error) {
	students, err := s.enrollments.ListEnrollments(ctx)
	if err != nil {
		return nil, domain.StoreError("list enrollments", err)
	}
	educators, err := s.educators.ListEducators(ctx)
	if err != nil {
		return nil, domain.StoreError("list educators", err)
	}
	return &ports.Overview{
		Students:  len(students),
		Educators: len(educators),
		Revenue:   domain.TotalRevenue(students),
	}, nil
}

func (s *AdminService) Delete(ctx context.Context, collection, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(domain.FieldError{Field: "id", Message: "this field is required"})
	}
	var err error
	switch collection {
	case CollectionRegistrations:
		if err := s.revokeSessions(ctx, id); err != nil {
			return err
		}
		err = s.enrollments.DeleteEnrollment(ctx, id)
	case CollectionEducators:
		if err := s.revokeSessions(ctx, id); err != nil {
			return err
		}
		err = s.educators.DeleteEducator(ctx, id)
	case CollectionAttendance:
		err = s.attendance.DeleteAttendance(ctx, id)
	case CollectionNotices:
		err = s.notices.DeleteNotice(ctx, id)
	default:
		return domain.NewValidationError(domain.FieldError{Field: "collection", Message: "is not a known collection"})
	}
	if err != nil {
		return domain.StoreError("delete "+collection, err)
	}
	return nil
}

// revokeSessions ends every open session of an account about to be removed.
func (s *AdminService) revokeSessions(ctx context.Context, subject string) error {
	if err := s.tokens.RevokeSubject(ctx, subject, s.now(), sessionTTL); err != nil {
		return domain.StoreError("revoke sessions", err)
	}
	return nil
}
