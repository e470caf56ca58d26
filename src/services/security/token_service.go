package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drive-clone/api/src/database"
	"github.com/drive-clone/api/src/domain/auth"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	blacklistPrefix  = "blacklist:"
	oauthStatePrefix = "oauth_state:"
	revocationPrefix = "user_revocation:"

	// OAuthStateTTL bounds how long a provider round-trip may take
	OAuthStateTTL = 10 * time.Minute

	redisTimeout = 2 * time.Second
)

// OAuthState is what a pending OAuth redirect remembers
type OAuthState struct {
	Provider   string `json:"provider"`
	SuccessURL string `json:"success_url"`
	FailureURL string `json:"failure_url"`
}

// TokenService keeps session revocations and OAuth state in Redis
type TokenService struct {
	redis  *database.RedisClient
	logger *logrus.Logger
}

// NewTokenService creates a new token service
func NewTokenService(redis *database.RedisClient, logger *logrus.Logger) *TokenService {
	return &TokenService{
		redis:  redis,
		logger: logger,
	}
}

// BlacklistToken revokes a token until it would have expired anyway
func (s *TokenService) BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" || ttl <= 0 {
		return nil
	}

	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.redis.Set(redisCtx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to blacklist token")
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether token was revoked
func (s *TokenService) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := s.redis.Get(redisCtx, blacklistPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return val == "1", nil
}

// SaveOAuthState stores a pending redirect and returns its random state key
func (s *TokenService) SaveOAuthState(ctx context.Context, state OAuthState) (string, error) {
	key, err := s.generateRandomToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode oauth state: %w", err)
	}

	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.redis.Set(redisCtx, oauthStatePrefix+key, payload, OAuthStateTTL).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store oauth state")
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"provider": state.Provider,
		"state":    key[:8] + "...", // Log only first 8 chars
	}).Debug("OAuth state stored")

	return key, nil
}

// ConsumeOAuthState validates and deletes a state key (single use)
func (s *TokenService) ConsumeOAuthState(ctx context.Context, key string) (*OAuthState, error) {
	if key == "" {
		return nil, auth.ErrInvalidOAuthState
	}

	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	raw, err := s.redis.Get(redisCtx, oauthStatePrefix+key).Bytes()
	if err != nil {
		s.logger.WithError(err).Debug("OAuth state not found or expired")
		return nil, auth.ErrInvalidOAuthState
	}

	// Delete state (single-use) - use fresh timeout context
	delCtx, delCancel := context.WithTimeout(ctx, redisTimeout)
	defer delCancel()
	if err := s.redis.Del(delCtx, oauthStatePrefix+key).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to delete oauth state")
	}

	var state OAuthState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, auth.ErrInvalidOAuthState
	}
	return &state, nil
}

// generateRandomToken generates a 32-byte random token
func (s *TokenService) generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// InvalidateUserTokens invalidates all current tokens for a user by setting a revocation timestamp.
// Used after a password change.
func (s *TokenService) InvalidateUserTokens(ctx context.Context, userID string, at time.Time) error {
	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	// Refresh tokens live 7 days; older revocations no longer matter.
	if err := s.redis.Set(redisCtx, revocationPrefix+userID, at.Unix(), RefreshTokenTTL).Err(); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to set revocation timestamp")
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("All user tokens invalidated")
	return nil
}

// IsTokenRevoked reports whether a token issued at issuedAt predates the
// user's last revocation.
func (s *TokenService) IsTokenRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	revokedAt, err := s.redis.Get(redisCtx, revocationPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	if issuedAt.Unix() < revokedAt {
		s.logger.WithFields(logrus.Fields{
			"user_id":      userID,
			"token_iat":    issuedAt.Unix(),
			"revocation_t": revokedAt,
		}).Warn("Token rejected by revocation timestamp")
		return true, nil
	}
	return false, nil
}
