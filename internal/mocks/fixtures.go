package mocks

import (
	"crypto/rand"
	"crypto/rsa"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// NewTestBreaker returns a breaker that never trips during a test run.
func NewTestBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		ReadyToTrip: func(gobreaker.Counts) bool { return false },
	})
}

// MustHash hashes pw with the minimum bcrypt cost to keep tests fast.
func MustHash(pw string) string {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// MustRSAKey generates a signing key for session token tests.
func MustRSAKey() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
}

// TestEnrollment builds an enrollment whose password is "secret1".
func TestEnrollment(id, child, email, program string) domain.Enrollment {
	return domain.Enrollment{
		ID:           id,
		ParentName:   "Parent of " + child,
		ChildName:    child,
		Email:        email,
		Program:      program,
		PasswordHash: MustHash("secret1"),
		CreatedAt:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// TestEducator builds an educator whose password is "teach123".
func TestEducator(id, name, email, program string) domain.Educator {
	return domain.Educator{
		ID:           id,
		Name:         name,
		Email:        email,
		Program:      program,
		PasswordHash: MustHash("teach123"),
		CreatedAt:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}
