package security

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/drive-clone/api/src/domain/auth"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// PasswordService hashes and verifies passwords with bcrypt
type PasswordService struct {
	cost int
}

// NewPasswordService creates a password service using bcrypt.DefaultCost
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// NewPasswordServiceWithCost allows a cheaper cost in tests
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// ValidatePasswordStrength enforces the minimum length
func (s *PasswordService) ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return auth.ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return auth.ErrPasswordTooLong
	}
	return nil
}

// HashPassword returns the bcrypt hash of password
func (s *PasswordService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", auth.ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword returns ErrInvalidCredentials when password does not match
func (s *PasswordService) ComparePassword(hashedPassword, password string) error {
	if hashedPassword == "" {
		return auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return auth.ErrInvalidCredentials
	}
	return nil
}
