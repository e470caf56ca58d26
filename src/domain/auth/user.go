package auth

import (
	"errors"
	"time"
)

// AuthProvider records how an account signs in
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

// User is a registered account
type User struct {
	ID           string       `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	Name         string       `db:"name" json:"name"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Provider     AuthProvider `db:"auth_provider" json:"provider"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// Principal is the authenticated identity a request acts as
type Principal struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// PrincipalFromUser builds the principal for a stored user
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	}
}

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("a user with this email already exists")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrWeakPassword        = errors.New("password must be at least 8 characters long")
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")
	ErrInvalidOAuthState   = errors.New("invalid or expired oauth state")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidEmail        = errors.New("a valid email address is required")
	ErrNameRequired        = errors.New("name cannot be empty")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPasswordTooLong     = errors.New("password must be at most 72 bytes long")
)
