package security

import (
	"context"
	"time"

	"github.com/drive-clone/api/src/domain/auth"
	"github.com/drive-clone/api/src/drivers/storage"
)

// JWTServiceInterface defines contract for JWT operations
type JWTServiceInterface interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateToken(tokenString string) (*TokenClaims, error)
	GenerateBlobToken(grant storage.BlobGrant) (string, error)
	ValidateBlobToken(tokenString string) (*storage.BlobGrant, error)
}

// PasswordServiceInterface defines contract for password operations
type PasswordServiceInterface interface {
	HashPassword(password string) (string, error)
	ComparePassword(hashedPassword, password string) error
	ValidatePasswordStrength(password string) error
}

// TokenServiceInterface defines contract for token revocation
type TokenServiceInterface interface {
	BlacklistToken(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	IsTokenRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// IdentityGateInterface defines the identity operations used by the HTTP layer
type IdentityGateInterface interface {
	CreateUser(ctx context.Context, email, password, name string) (*auth.Principal, error)
	CreateSession(ctx context.Context, email, password string) (*Session, error)
	ResolveCurrentPrincipal(ctx context.Context, credential string) (*auth.Principal, error)
	DeleteSession(ctx context.Context, accessToken, refreshToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	BeginOAuthRedirect(ctx context.Context, provider, successURL, failureURL string) (string, error)
	CompleteOAuth(ctx context.Context, provider, state, code string) (*Session, string, error)
	UpdateProfile(ctx context.Context, principal *auth.Principal, update ProfileUpdate) (*auth.Principal, *Session, error)
}

var (
	_ JWTServiceInterface      = (*JWTService)(nil)
	_ PasswordServiceInterface = (*PasswordService)(nil)
	_ TokenServiceInterface    = (*TokenService)(nil)
	_ IdentityGateInterface    = (*IdentityGate)(nil)
	_ storage.BlobURLSigner    = (*JWTService)(nil)
)
