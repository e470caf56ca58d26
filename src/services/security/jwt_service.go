package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/drive-clone/api/src/drivers/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenType separates the purposes a signed token can be used for
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
	BlobToken    TokenType = "blob"
)

// Token lifetimes (cookie max-ages in handlers/auth must match)
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

const tokenIssuer = "drive-clone"

// TokenClaims are the claims of access and refresh tokens
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// blobClaims carry a signed local blob URL grant
type blobClaims struct {
	storage.BlobGrant
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService signs and validates HS256 tokens
type JWTService struct {
	secret  []byte
	blobTTL time.Duration
	logger  *logrus.Logger
	now     func() time.Time
}

// NewJWTService creates a JWT service. blobTTL bounds signed blob URLs.
func NewJWTService(secret string, blobTTL time.Duration, logger *logrus.Logger) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if blobTTL <= 0 {
		blobTTL = 15 * time.Minute
	}
	return &JWTService{
		secret:  []byte(secret),
		blobTTL: blobTTL,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// GenerateAccessToken issues a short-lived session token
func (s *JWTService) GenerateAccessToken(userID, email string) (string, error) {
	return s.generate(userID, email, AccessToken, AccessTokenTTL)
}

// GenerateRefreshToken issues a long-lived token that can mint access tokens
func (s *JWTService) GenerateRefreshToken(userID, email string) (string, error) {
	return s.generate(userID, email, RefreshToken, RefreshTokenTTL)
}

func (s *JWTService) generate(userID, email string, tokenType TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry of an access or refresh token
func (s *JWTService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != AccessToken && claims.TokenType != RefreshToken {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	return claims, nil
}

// GenerateBlobToken signs a grant for the local blob endpoint
func (s *JWTService) GenerateBlobToken(grant storage.BlobGrant) (string, error) {
	now := s.now()
	claims := blobClaims{
		BlobGrant: grant,
		TokenType: BlobToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.BlobID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.blobTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign blob token: %w", err)
	}
	return signed, nil
}

// ValidateBlobToken verifies a blob URL token and returns its grant
func (s *JWTService) ValidateBlobToken(tokenString string) (*storage.BlobGrant, error) {
	claims := &blobClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != BlobToken || claims.BlobID == "" {
		return nil, errors.New("not a blob token")
	}
	grant := claims.BlobGrant
	return &grant, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	return nil
}
