package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// maxParallelWrites bounds the concurrent upserts of one submission.
const maxParallelWrites = 8

type AttendanceService struct {
	enrollments ports.EnrollmentRepository
	records     ports.AttendanceRepository
	now         func() time.Time
}

var _ ports.AttendanceService = (*AttendanceService)(nil)

func NewAttendanceService(enrollments ports.EnrollmentRepository, records ports.AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		enrollments: enrollments,
		records:     records,
		now:         time.Now,
	}
}

// Roster returns the enrollments of a program ordered by child name.
func (s *AttendanceService) Roster(ctx context.Context, program string) ([]domain.Enrollment, error) {
	roster, err := s.enrollments.ListEnrollmentsByProgram(ctx, domain.NormalizeProgram(program))
	if err != nil {
		return nil, domain.StoreError("list roster", err)
	}
	sort.SliceStable(roster, func(i, j int) bool {
		return strings.ToLower(roster[i].ChildName) < strings.ToLower(roster[j].ChildName)
	})
	return roster, nil
}

// Submit persists one Absent record per absentee. With nobody absent nothing
// is written and AllPresent is set.
func (s *AttendanceService) Submit(ctx context.Context, educator domain.Identity, sheet *domain.Sheet) (*ports.SubmitResult, error) {
	absentees := sheet.Absentees()
	if len(absentees) == 0 {
		return &ports.SubmitResult{AllPresent: true}, nil
	}

	now := s.now().UTC()
	records := make([]domain.AttendanceRecord, len(absentees))
	for i, e := range absentees {
		records[i] = domain.AttendanceRecord{
			ID:           uuid.NewString(),
			EnrollmentID: e.ID,
			ChildName:    e.ChildName,
			ParentName:   e.ParentName,
			Program:      e.Program,
			Status:       domain.StatusAbsent,
			Kind:         domain.KindRoll,
			Date:         now.Format(domain.DateLayout),
			MarkedBy:     educator.Name,
			Timestamp:    now,
		}
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		wrote  = make([]bool, len(records))
	)
	var g errgroup.Group
	g.SetLimit(maxParallelWrites)
	for i := range records {
		g.Go(func() error {
			err := s.records.UpsertAttendance(ctx, records[i])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[records[i].EnrollmentID] = err
				return nil
			}
			wrote[i] = true
			return nil
		})
	}
	_ = g.Wait()

	result := &ports.SubmitResult{}
	for i, ok := range wrote {
		if ok {
			result.Records = append(result.Records, records[i])
		}
	}

	if len(failed) == 0 {
		return result, nil
	}
	if len(result.Records) == 0 {
		return nil, domain.StoreError("submit attendance", failed[absentees[0].ID])
	}
	written := make([]string, 0, len(result.Records))
	for _, r := range result.Records {
		written = append(written, r.EnrollmentID)
	}
	return result, &domain.PartialFailureError{Written: written, Failed: failed}
}

// Report flags a child with a free-text reason. It does not touch the roll.
func (s *AttendanceService) Report(ctx context.Context, educator domain.Identity, enrollmentID, reason string) (*domain.AttendanceRecord, error) {
	reason = strings.TrimSpace(reason)
	var fields []domain.FieldError
	if strings.TrimSpace(enrollmentID) == "" {
		fields = append(fields, domain.FieldError{Field: "enrollment_id", Message: "this field is required"})
	}
	if reason == "" {
		fields = append(fields, domain.FieldError{Field: "reason", Message: "this field is required"})
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}

	enrollment, err := s.enrollments.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, domain.StoreError("find enrollment", err)
	}
	if enrollment == nil {
		return nil, domain.ErrNotFound
	}
	if !strings.EqualFold(enrollment.Program, educator.Program) {
		return nil, domain.NewValidationError(domain.FieldError{Field: "enrollment_id", Message: "is not in your program"})
	}

	now := s.now().UTC()
	record := domain.AttendanceRecord{
		ID:           uuid.NewString(),
		EnrollmentID: enrollment.ID,
		ChildName:    enrollment.ChildName,
		ParentName:   enrollment.ParentName,
		Program:      enrollment.Program,
		Status:       domain.StatusFlagged,
		Kind:         domain.KindReport,
		Date:         now.Format(domain.DateLayout),
		MarkedBy:     educator.Name,
		ReportReason: reason,
		Reported:     true,
		Timestamp:    now,
	}
	if err := s.records.UpsertAttendance(ctx, record); err != nil {
		return nil, domain.StoreError("report attendance", err)
	}
	return &record, nil
}
