package services

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

const generatedPasswordLength = 8

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// HashPassword reports a password bcrypt cannot take (over 72 bytes) as a
// validation error on the password field.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError(domain.FieldError{Field: "password", Message: "is too long"})
	}
	return string(b), err
}

func CheckPassword(hashed, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

func generatePassword() (string, error) {
	out := make([]byte, generatedPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
