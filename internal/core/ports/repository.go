package ports

import (
	"context"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// EnrollmentRepository stores parent/child registrations.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment domain.Enrollment, event OutboxEvent) error
	FindEnrollmentsByEmail(ctx context.Context, email string) ([]domain.Enrollment, error)
	FindEnrollmentByID(ctx context.Context, id string) (*domain.Enrollment, error)
	ListEnrollmentsByProgram(ctx context.Context, program string) ([]domain.Enrollment, error)
	ListEnrollments(ctx context.Context) ([]domain.Enrollment, error)
	DeleteEnrollment(ctx context.Context, id string) error
}

type EducatorRepository interface {
	CreateEducator(ctx context.Context, educator domain.Educator) error
	FindEducatorsByEmail(ctx context.Context, email string) ([]domain.Educator, error)
	ListEducators(ctx context.Context) ([]domain.Educator, error)
	DeleteEducator(ctx context.Context, id string) error
}

// AttendanceRepository upserts records keyed by (enrollment, date, kind).
type AttendanceRepository interface {
	UpsertAttendance(ctx context.Context, record domain.AttendanceRecord) error
	ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, id string) error
}

type NoticeRepository interface {
	CreateNotice(ctx context.Context, notice domain.Notice, event OutboxEvent) error
	ListNoticesByProgram(ctx context.Context, program string) ([]domain.Notice, error)
	DeleteNotice(ctx context.Context, id string) error
}

// NoticeFeed pushes the full notice list of a program on every change.
// The first snapshot is sent right after Watch returns. The release func must
// be called once the caller is done with the channel.
type NoticeFeed interface {
	Watch(ctx context.Context, program string) (<-chan []domain.Notice, func(), error)
}
