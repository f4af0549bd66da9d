package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/cache"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
	"github.com/AchilleasB/kinder/nursery-service/internal/mocks"
)

func newAdmin(repo *mocks.MockRepository) *AdminService {
	svc, _ := newAdminWithTokens(repo, mocks.NewMockRedisClient())
	return svc
}

func newAdminWithTokens(repo *mocks.MockRepository, client *mocks.MockRedisClient) (*AdminService, *cache.Store) {
	store := cache.NewStore(client, mocks.NewTestBreaker("redis"))
	svc := NewAdminService(repo, repo, repo, repo, newIdentity(repo), store)
	svc.now = func() time.Time { return testDay }
	return svc, store
}

func TestAdminService_CreateEducator(t *testing.T) {
	repo := mocks.NewMockRepository()
	svc := newAdmin(repo)

	created, err := svc.CreateEducator(context.Background(), ports.NewEducatorInput{
		Name: " Mia ", Email: "Mia@Kinder.com", Program: "Infant",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created.Password) != 8 {
		t.Errorf("expected an 8 character password, got %q", created.Password)
	}
	if created.Educator.Email != "mia@kinder.com" || created.Educator.Program != "infant" || created.Educator.Name != "Mia" {
		t.Errorf("unexpected educator %+v", created.Educator)
	}

	// the generated password logs the educator in
	id, err := newIdentity(repo).Resolve(context.Background(), "mia@kinder.com", created.Password)
	if err != nil || id.Role != domain.RoleEducator {
		t.Errorf("expected educator login, got %+v %v", id, err)
	}
}

func TestAdminService_CreateEducatorRejects(t *testing.T) {
	tests := []struct {
		name  string
		in    ports.NewEducatorInput
		field string
	}{
		{"missing_name", ports.NewEducatorInput{Email: "a@kinder.com", Program: "infant"}, "name"},
		{"bad_program", ports.NewEducatorInput{Name: "A", Email: "a@kinder.com", Program: "chess"}, "program"},
		{"admin_email", ports.NewEducatorInput{Name: "A", Email: testAdminEmail, Program: "infant"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRepository()
			_, err := newAdmin(repo).CreateEducator(context.Background(), tt.in)
			if _, ok := fieldsOf(t, err)[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
			if len(repo.CreateEducatorCalls) != 0 {
				t.Error("expected nothing stored")
			}
		})
	}
}

func TestAdminService_ListingsNewestFirst(t *testing.T) {
	repo := mocks.NewMockRepository()
	older := mocks.TestEnrollment("old", "Ada", "a@example.com", "infant")
	newer := mocks.TestEnrollment("new", "Ben", "b@example.com", "infant")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	repo.SeedEnrollment(older)
	repo.SeedEnrollment(newer)

	list, err := newAdmin(repo).ListEnrollments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestAdminService_Overview(t *testing.T) {
	repo := mocks.NewMockRepository()
	repo.SeedEnrollment(mocks.TestEnrollment("a", "Ada", "a@example.com", "infant"))
	repo.SeedEnrollment(mocks.TestEnrollment("b", "Ben", "b@example.com", "preschool"))
	repo.SeedEnrollment(mocks.TestEnrollment("c", "Cy", "c@example.com", "afterschool"))
	repo.SeedEducator(mocks.TestEducator("ed1", "Mia", "mia@kinder.com", "infant"))

	overview, err := newAdmin(repo).Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.Students != 3 || overview.Educators != 1 || overview.Revenue.Total != 1300 {
		t.Errorf("unexpected overview %+v", overview)
	}
}

func TestAdminService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		id         string
		wantErr    error
	}{
		{name: "registration", collection: CollectionRegistrations, id: "a"},
		{name: "educator", collection: CollectionEducators, id: "ed1"},
		{name: "notice", collection: CollectionNotices, id: "n1"},
		{name: "missing_registration", collection: CollectionRegistrations, id: "zzz", wantErr: domain.ErrNotFound},
		{name: "unknown_collection", collection: "babies", id: "a", wantErr: domain.ErrValidation},
		{name: "empty_id", collection: CollectionNotices, id: " ", wantErr: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRepository()
			repo.SeedEnrollment(mocks.TestEnrollment("a", "Ada", "a@example.com", "infant"))
			repo.SeedEducator(mocks.TestEducator("ed1", "Mia", "mia@kinder.com", "infant"))
			repo.SeedNotice(domain.Notice{ID: "n1", Program: "infant", Type: domain.NoticeBroadcast})

			err := newAdmin(repo).Delete(context.Background(), tt.collection, tt.id)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAdminService_DeleteAttendance(t *testing.T) {
	repo := mocks.NewMockRepository()
	seedRoster(repo)
	svc := newAttendance(repo)
	rec, err := svc.Report(context.Background(), testEducator, "a", "rash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := newAdmin(repo).Delete(context.Background(), CollectionAttendance, rec.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.Attendance()) != 0 {
		t.Error("expected the record to be removed")
	}
}

func TestAdminService_DeleteRevokesSessions(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		id         string
		revoked    bool
	}{
		{name: "educator", collection: CollectionEducators, id: "ed1", revoked: true},
		{name: "registration", collection: CollectionRegistrations, id: "a", revoked: true},
		{name: "notice", collection: CollectionNotices, id: "n1", revoked: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRepository()
			repo.SeedEnrollment(mocks.TestEnrollment("a", "Ada", "a@example.com", "infant"))
			repo.SeedEducator(mocks.TestEducator("ed1", "Mia", "mia@kinder.com", "infant"))
			repo.SeedNotice(domain.Notice{ID: "n1", Program: "infant", Type: domain.NoticeBroadcast})
			svc, store := newAdminWithTokens(repo, mocks.NewMockRedisClient())

			if err := svc.Delete(context.Background(), tt.collection, tt.id); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			since, ok, err := store.RevokedSince(context.Background(), tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.revoked {
				t.Fatalf("expected revoked=%v, got %v", tt.revoked, ok)
			}
			if ok && !since.Equal(testDay) {
				t.Errorf("expected revocation at %v, got %v", testDay, since)
			}
		})
	}
}

func TestAdminService_DeleteKeepsAccountWhenRevocationFails(t *testing.T) {
	repo := mocks.NewMockRepository()
	repo.SeedEducator(mocks.TestEducator("ed1", "Mia", "mia@kinder.com", "infant"))
	client := mocks.NewMockRedisClient()
	client.SetError = errors.New("connection refused")
	svc, _ := newAdminWithTokens(repo, client)

	err := svc.Delete(context.Background(), CollectionEducators, "ed1")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(repo.DeleteCalls) != 0 {
		t.Errorf("expected no delete, got %v", repo.DeleteCalls)
	}
}
