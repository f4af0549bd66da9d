package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/mocks"
)

const testAdminEmail = "admin@kinder.com"

func newIdentity(repo *mocks.MockRepository) *IdentityService {
	return NewIdentityService(testAdminEmail, mocks.MustHash("adminpw"), repo, repo)
}

func TestIdentityService_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*mocks.MockRepository)
		email     string
		password  string
		wantRole  domain.Role
		wantID    string
		wantError error
	}{
		{
			name:     "admin_with_configured_credentials",
			setup:    func(m *mocks.MockRepository) {},
			email:    "Admin@Kinder.com",
			password: "adminpw",
			wantRole: domain.RoleAdmin,
			wantID:   "admin",
		},
		{
			name:      "admin_with_wrong_password",
			setup:     func(m *mocks.MockRepository) {},
			email:     testAdminEmail,
			password:  "nope",
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name: "educator_wins_over_parent_with_same_email",
			setup: func(m *mocks.MockRepository) {
				m.SeedEducator(mocks.TestEducator("ed1", "Mia", "shared@kinder.com", "infant"))
				e := mocks.TestEnrollment("en1", "Ada", "shared@kinder.com", "infant")
				e.PasswordHash = mocks.MustHash("teach123")
				m.SeedEnrollment(e)
			},
			email:    "shared@kinder.com",
			password: "teach123",
			wantRole: domain.RoleEducator,
			wantID:   "ed1",
		},
		{
			name: "educator_wrong_password_does_not_fall_through",
			setup: func(m *mocks.MockRepository) {
				m.SeedEducator(mocks.TestEducator("ed1", "Mia", "shared@kinder.com", "infant"))
				m.SeedEnrollment(mocks.TestEnrollment("en1", "Ada", "shared@kinder.com", "infant"))
			},
			email:     "shared@kinder.com",
			password:  "secret1",
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name: "parent_resolves_to_enrollment",
			setup: func(m *mocks.MockRepository) {
				m.SeedEnrollment(mocks.TestEnrollment("en1", "Ada", "mum@example.com", "preschool"))
			},
			email:    " MUM@example.com ",
			password: "secret1",
			wantRole: domain.RoleParent,
			wantID:   "en1",
		},
		{
			name: "two_enrollments_with_one_email_are_ambiguous",
			setup: func(m *mocks.MockRepository) {
				m.SeedEnrollment(mocks.TestEnrollment("en1", "Ada", "mum@example.com", "preschool"))
				m.SeedEnrollment(mocks.TestEnrollment("en2", "Ben", "mum@example.com", "infant"))
			},
			email:     "mum@example.com",
			password:  "secret1",
			wantError: domain.ErrAmbiguousLookup,
		},
		{
			name:      "unknown_email",
			setup:     func(m *mocks.MockRepository) {},
			email:     "nobody@example.com",
			password:  "secret1",
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:      "empty_password",
			setup:     func(m *mocks.MockRepository) {},
			email:     "nobody@example.com",
			password:  "",
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name: "store_failure_is_reported",
			setup: func(m *mocks.MockRepository) {
				m.FindByEmailError = errors.New("connection refused")
			},
			email:     "mum@example.com",
			password:  "secret1",
			wantError: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRepository()
			tt.setup(repo)

			id, err := newIdentity(repo).Resolve(context.Background(), tt.email, tt.password)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Fatalf("expected %v, got %v", tt.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Role != tt.wantRole || id.ID != tt.wantID {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantRole, tt.wantID, id.Role, id.ID)
			}
		})
	}
}

func TestIdentityService_EmailInUse(t *testing.T) {
	repo := mocks.NewMockRepository()
	repo.SeedEducator(mocks.TestEducator("ed1", "Mia", "mia@kinder.com", "infant"))
	repo.SeedEnrollment(mocks.TestEnrollment("en1", "Ada", "mum@example.com", "infant"))
	svc := newIdentity(repo)

	for email, want := range map[string]bool{
		testAdminEmail:    true,
		"MIA@kinder.com":  true,
		"mum@example.com": true,
		"new@example.com": false,
	} {
		got, err := svc.EmailInUse(context.Background(), email)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("EmailInUse(%q): expected %v, got %v", email, want, got)
		}
	}
}
