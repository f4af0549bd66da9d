package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/repository"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
	"github.com/AchilleasB/kinder/nursery-service/internal/mocks"
)

// These tests need a disposable PostgreSQL database:
//
//	TEST_DB_CONNECTION_STRING=postgres://... go test ./internal/adapters/repository/...
var (
	testDB   *sql.DB
	testRepo *repository.SQLRepository
)

func TestMain(m *testing.M) {
	dbURL := os.Getenv("TEST_DB_CONNECTION_STRING")
	if dbURL == "" {
		fmt.Println("Skipping repository tests: TEST_DB_CONNECTION_STRING not set")
		os.Exit(0)
	}

	var err error
	testDB, err = sql.Open("postgres", dbURL)
	if err != nil {
		fmt.Printf("Failed to open test database: %v\n", err)
		os.Exit(1)
	}
	testRepo = repository.NewSQLRepository(testDB, mocks.NewTestBreaker("PostgreSQL"))
	if err := testRepo.Migrate(context.Background()); err != nil {
		fmt.Printf("Failed to migrate test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	cleanup()
	testDB.Close()
	os.Exit(code)
}

func cleanup() {
	for _, table := range []string{"attendance", "notices", "outbox_events", "educators", "enrollments"} {
		_, _ = testDB.Exec("DELETE FROM " + table)
	}
}

func outboxEvent(eventType string) ports.OutboxEvent {
	return ports.OutboxEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   []byte(`{}`),
		CreatedAt: time.Now().UTC(),
	}
}

func TestSQLRepository_Enrollments(t *testing.T) {
	cleanup()
	ctx := context.Background()
	e := mocks.TestEnrollment(uuid.NewString(), "Ada", "Jane@Example.com", "preschool")

	if err := testRepo.CreateEnrollment(ctx, e, outboxEvent(ports.EventEnrollmentCreated)); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := testRepo.FindEnrollmentsByEmail(ctx, "jane@example.com")
	if err != nil || len(found) != 1 || found[0].ID != e.ID {
		t.Fatalf("expected to find %s case-insensitively, got %+v %v", e.ID, found, err)
	}

	byID, err := testRepo.FindEnrollmentByID(ctx, e.ID)
	if err != nil || byID == nil || byID.PasswordHash != e.PasswordHash {
		t.Fatalf("unexpected lookup %+v %v", byID, err)
	}
	missing, err := testRepo.FindEnrollmentByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown id, got %+v %v", missing, err)
	}

	var pending int
	_ = testDB.QueryRow("SELECT COUNT(*) FROM outbox_events WHERE processed_at IS NULL").Scan(&pending)
	if pending != 1 {
		t.Errorf("expected 1 outbox event, got %d", pending)
	}

	if err := testRepo.DeleteEnrollment(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := testRepo.DeleteEnrollment(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLRepository_DuplicateEmail(t *testing.T) {
	cleanup()
	ctx := context.Background()
	first := mocks.TestEnrollment(uuid.NewString(), "Ada", "dup@example.com", "infant")
	second := mocks.TestEnrollment(uuid.NewString(), "Ben", "DUP@example.com", "infant")

	if err := testRepo.CreateEnrollment(ctx, first, outboxEvent(ports.EventEnrollmentCreated)); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := testRepo.CreateEnrollment(ctx, second, outboxEvent(ports.EventEnrollmentCreated))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var events int
	_ = testDB.QueryRow("SELECT COUNT(*) FROM outbox_events").Scan(&events)
	if events != 1 {
		t.Errorf("expected the failed insert to roll back its event, got %d events", events)
	}
}

func TestSQLRepository_AttendanceUpsert(t *testing.T) {
	cleanup()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := domain.AttendanceRecord{
		ID: uuid.NewString(), EnrollmentID: "en1", ChildName: "Ada", ParentName: "Jane",
		Program: "infant", Status: domain.StatusAbsent, Kind: domain.KindRoll,
		Date: now.Format(domain.DateLayout), MarkedBy: "Mia", Timestamp: now,
	}

	if err := testRepo.UpsertAttendance(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	again := rec
	again.ID = uuid.NewString()
	again.MarkedBy = "Lea"
	if err := testRepo.UpsertAttendance(ctx, again); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	list, err := testRepo.ListAttendance(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].MarkedBy != "Lea" {
		t.Errorf("expected one updated record, got %+v", list)
	}

	report := rec
	report.ID = uuid.NewString()
	report.Kind = domain.KindReport
	report.Status = domain.StatusFlagged
	report.Reported = true
	report.ReportReason = "fever"
	if err := testRepo.UpsertAttendance(ctx, report); err != nil {
		t.Fatalf("report upsert: %v", err)
	}
	if list, _ := testRepo.ListAttendance(ctx); len(list) != 2 {
		t.Errorf("expected report kept apart from the roll, got %d records", len(list))
	}
}

func TestSQLRepository_Notices(t *testing.T) {
	cleanup()
	ctx := context.Background()
	recipient := "en1"
	notices := []domain.Notice{
		{ID: uuid.NewString(), Text: "Trip", Program: "infant", Sender: "Mia", Date: "2024-03-01T09:00:00.000Z", Type: domain.NoticeBroadcast},
		{ID: uuid.NewString(), Text: "Coat", Program: "infant", Sender: "Mia", Date: "2024-03-02T09:00:00.000Z", Type: domain.NoticePrivate, RecipientID: &recipient},
		{ID: uuid.NewString(), Text: "Other", Program: "preschool", Sender: "Lea", Date: "2024-03-02T09:00:00.000Z", Type: domain.NoticeBroadcast},
	}
	for _, n := range notices {
		if err := testRepo.CreateNotice(ctx, n, outboxEvent(ports.EventNoticePosted)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := testRepo.ListNoticesByProgram(ctx, "infant")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 infant notices, got %d", len(list))
	}
	for _, n := range list {
		if n.Type == domain.NoticePrivate && (n.RecipientID == nil || *n.RecipientID != "en1") {
			t.Errorf("expected recipient en1, got %v", n.RecipientID)
		}
		if n.Type == domain.NoticeBroadcast && n.RecipientID != nil {
			t.Errorf("expected no recipient on broadcast, got %v", *n.RecipientID)
		}
	}

	if err := testRepo.DeleteNotice(ctx, notices[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := testRepo.DeleteNotice(ctx, notices[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepository_Educators(t *testing.T) {
	cleanup()
	ctx := context.Background()
	ed := mocks.TestEducator(uuid.NewString(), "Mia", "mia@kinder.com", "infant")
	if err := testRepo.CreateEducator(ctx, ed); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := testRepo.CreateEducator(ctx, mocks.TestEducator(uuid.NewString(), "Mia 2", "MIA@kinder.com", "infant")); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected duplicate email rejected, got %v", err)
	}

	list, err := testRepo.ListEducators(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one educator, got %+v %v", list, err)
	}
	if err := testRepo.DeleteEducator(ctx, ed.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
}
