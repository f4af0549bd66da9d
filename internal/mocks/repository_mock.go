// Package mocks provides in-memory implementations of the ports for tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// MockRepository implements every repository port in memory, the same way
// SQLRepository does against PostgreSQL.
type MockRepository struct {
	mu sync.RWMutex

	enrollments map[string]domain.Enrollment
	educators   map[string]domain.Educator
	attendance  map[string]domain.AttendanceRecord
	notices     map[string]domain.Notice
	outbox      []ports.OutboxEvent

	// Call tracking for verification
	CreateEnrollmentCalls []domain.Enrollment
	CreateEducatorCalls   []domain.Educator
	UpsertAttendanceCalls []domain.AttendanceRecord
	CreateNoticeCalls     []domain.Notice
	DeleteCalls           []string

	// Error injection for testing error scenarios
	CreateEnrollmentError error
	CreateEducatorError   error
	FindByEmailError      error
	FindByIDError         error
	ListError             error
	CreateNoticeError     error
	ListNoticesError      error
	DeleteError           error
	// UpsertErrors fails the upsert of the listed enrollment ids only.
	UpsertErrors map[string]error
}

var (
	_ ports.EnrollmentRepository = (*MockRepository)(nil)
	_ ports.EducatorRepository   = (*MockRepository)(nil)
	_ ports.AttendanceRepository = (*MockRepository)(nil)
	_ ports.NoticeRepository     = (*MockRepository)(nil)
)

func NewMockRepository() *MockRepository {
	return &MockRepository{
		enrollments:  make(map[string]domain.Enrollment),
		educators:    make(map[string]domain.Educator),
		attendance:   make(map[string]domain.AttendanceRecord),
		notices:      make(map[string]domain.Notice),
		UpsertErrors: make(map[string]error),
	}
}

// SeedEnrollment adds an enrollment for test setup.
func (m *MockRepository) SeedEnrollment(e domain.Enrollment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[e.ID] = e
}

// SeedEducator adds an educator for test setup.
func (m *MockRepository) SeedEducator(e domain.Educator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.educators[e.ID] = e
}

// SeedNotice adds a notice for test setup.
func (m *MockRepository) SeedNotice(n domain.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[n.ID] = n
}

func (m *MockRepository) CreateEnrollment(ctx context.Context, e domain.Enrollment, event ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateEnrollmentCalls = append(m.CreateEnrollmentCalls, e)
	if m.CreateEnrollmentError != nil {
		return m.CreateEnrollmentError
	}
	m.enrollments[e.ID] = e
	m.outbox = append(m.outbox, event)
	return nil
}

func (m *MockRepository) FindEnrollmentsByEmail(ctx context.Context, email string) ([]domain.Enrollment, error) {
	if m.FindByEmailError != nil {
		return nil, m.FindByEmailError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if strings.EqualFold(e.Email, email) {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindEnrollmentByID returns nil, nil when id is unknown.
func (m *MockRepository) FindEnrollmentByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.enrollments[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MockRepository) ListEnrollmentsByProgram(ctx context.Context, program string) ([]domain.Enrollment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if e.Program == program {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildName < out[j].ChildName })
	return out, nil
}

func (m *MockRepository) ListEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Enrollment, 0, len(m.enrollments))
	for _, e := range m.enrollments {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) DeleteEnrollment(ctx context.Context, id string) error {
	return m.remove("registrations", id, func() bool {
		_, ok := m.enrollments[id]
		delete(m.enrollments, id)
		return ok
	})
}

func (m *MockRepository) CreateEducator(ctx context.Context, e domain.Educator) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateEducatorCalls = append(m.CreateEducatorCalls, e)
	if m.CreateEducatorError != nil {
		return m.CreateEducatorError
	}
	m.educators[e.ID] = e
	return nil
}

func (m *MockRepository) FindEducatorsByEmail(ctx context.Context, email string) ([]domain.Educator, error) {
	if m.FindByEmailError != nil {
		return nil, m.FindByEmailError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Educator
	for _, e := range m.educators {
		if strings.EqualFold(e.Email, email) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) ListEducators(ctx context.Context) ([]domain.Educator, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Educator, 0, len(m.educators))
	for _, e := range m.educators {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) DeleteEducator(ctx context.Context, id string) error {
	return m.remove("educators", id, func() bool {
		_, ok := m.educators[id]
		delete(m.educators, id)
		return ok
	})
}

// UpsertAttendance replaces any record with the same enrollment, date and kind.
func (m *MockRepository) UpsertAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertAttendanceCalls = append(m.UpsertAttendanceCalls, rec)
	if err := m.UpsertErrors[rec.EnrollmentID]; err != nil {
		return err
	}
	key := rec.EnrollmentID + "|" + rec.Date + "|" + string(rec.Kind)
	if prev, ok := m.attendance[key]; ok {
		rec.ID = prev.ID
	}
	m.attendance[key] = rec
	return nil
}

// ListAttendance returns records newest first.
func (m *MockRepository) ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.AttendanceRecord, 0, len(m.attendance))
	for _, r := range m.attendance {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].EnrollmentID < out[j].EnrollmentID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (m *MockRepository) DeleteAttendance(ctx context.Context, id string) error {
	return m.remove("attendance", id, func() bool {
		for key, r := range m.attendance {
			if r.ID == id {
				delete(m.attendance, key)
				return true
			}
		}
		return false
	})
}

func (m *MockRepository) CreateNotice(ctx context.Context, n domain.Notice, event ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateNoticeCalls = append(m.CreateNoticeCalls, n)
	if m.CreateNoticeError != nil {
		return m.CreateNoticeError
	}
	m.notices[n.ID] = n
	m.outbox = append(m.outbox, event)
	return nil
}

func (m *MockRepository) ListNoticesByProgram(ctx context.Context, program string) ([]domain.Notice, error) {
	if m.ListNoticesError != nil {
		return nil, m.ListNoticesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Notice
	for _, n := range m.notices {
		if n.Program == program {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *MockRepository) DeleteNotice(ctx context.Context, id string) error {
	return m.remove("notices", id, func() bool {
		_, ok := m.notices[id]
		delete(m.notices, id)
		return ok
	})
}

func (m *MockRepository) remove(collection, id string, del func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, collection+"/"+id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if !del() {
		return domain.ErrNotFound
	}
	return nil
}

// Attendance returns the stored records in enrollment id order.
func (m *MockRepository) Attendance() []domain.AttendanceRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.AttendanceRecord, 0, len(m.attendance))
	for _, r := range m.attendance {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnrollmentID == out[j].EnrollmentID {
			return out[i].Kind < out[j].Kind
		}
		return out[i].EnrollmentID < out[j].EnrollmentID
	})
	return out
}

// Outbox returns a copy of the events written alongside entities.
func (m *MockRepository) Outbox() []ports.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.OutboxEvent, len(m.outbox))
	copy(events, m.outbox)
	return events
}

// Reset clears all stored data, call tracking and injected errors.
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enrollments = make(map[string]domain.Enrollment)
	m.educators = make(map[string]domain.Educator)
	m.attendance = make(map[string]domain.AttendanceRecord)
	m.notices = make(map[string]domain.Notice)
	m.outbox = nil
	m.CreateEnrollmentCalls = nil
	m.CreateEducatorCalls = nil
	m.UpsertAttendanceCalls = nil
	m.CreateNoticeCalls = nil
	m.DeleteCalls = nil
	m.CreateEnrollmentError = nil
	m.CreateEducatorError = nil
	m.FindByEmailError = nil
	m.FindByIDError = nil
	m.ListError = nil
	m.CreateNoticeError = nil
	m.ListNoticesError = nil
	m.DeleteError = nil
	m.UpsertErrors = make(map[string]error)
}
