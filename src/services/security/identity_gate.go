package security

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/drive-clone/api/src/domain/auth"
	auth_repo "github.com/drive-clone/api/src/repository/auth"
	"github.com/sirupsen/logrus"
)

// Session is the credential pair handed to a signed-in client
type Session struct {
	AccessToken  string
	RefreshToken string
	Principal    *auth.Principal
}

// ProfileUpdate is a partial change of the caller's own account
type ProfileUpdate struct {
	Name            *string
	NewPassword     string
	ConfirmPassword string
}

// IdentityGate resolves credentials to principals and manages sessions.
// It is the only place the owner of a request is derived from.
type IdentityGate struct {
	users       auth_repo.UserRepositoryInterface
	jwt         *JWTService
	passwords   *PasswordService
	tokens      *TokenService
	providers   map[string]OAuthProvider
	frontendURL string
	logger      *logrus.Logger
	now         func() time.Time
}

func NewIdentityGate(
	users auth_repo.UserRepositoryInterface,
	jwt *JWTService,
	passwords *PasswordService,
	tokens *TokenService,
	frontendURL string,
	logger *logrus.Logger,
	providers ...OAuthProvider,
) *IdentityGate {
	byName := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &IdentityGate{
		users:       users,
		jwt:         jwt,
		passwords:   passwords,
		tokens:      tokens,
		providers:   byName,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		logger:      logger,
		now:         time.Now,
	}
}

// CreateUser registers an email/password account
func (g *IdentityGate) CreateUser(ctx context.Context, email, password, name string) (*auth.Principal, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := g.passwords.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	existing, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, auth.ErrEmailTaken
	}

	hash, err := g.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := g.users.CreateUser(ctx, email, strings.TrimSpace(name), hash, auth.ProviderEmail)
	if err != nil {
		return nil, err
	}
	return auth.PrincipalFromUser(user), nil
}

// CreateSession checks email and password and issues a session
func (g *IdentityGate) CreateSession(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrInvalidCredentials
	}
	if err := g.passwords.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return g.issueSession(user)
}

// ResolveCurrentPrincipal validates an access token. Any failure, including
// an unreachable revocation store, yields ErrUnauthenticated.
func (g *IdentityGate) ResolveCurrentPrincipal(ctx context.Context, credential string) (*auth.Principal, error) {
	if credential == "" {
		return nil, auth.ErrUnauthenticated
	}

	claims, err := g.jwt.ValidateToken(credential)
	if err != nil || claims.TokenType != AccessToken {
		return nil, auth.ErrUnauthenticated
	}

	if err := g.checkNotRevoked(ctx, credential, claims); err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		g.logger.WithError(err).WithField("user_id", claims.UserID).Warn("User lookup failed during authentication")
		return nil, auth.ErrUnauthenticated
	}
	if user == nil {
		return nil, auth.ErrUnauthenticated
	}
	return auth.PrincipalFromUser(user), nil
}

func (g *IdentityGate) checkNotRevoked(ctx context.Context, token string, claims *TokenClaims) error {
	blacklisted, err := g.tokens.IsBlacklisted(ctx, token)
	if err != nil {
		g.logger.WithError(err).WithField("user_id", claims.UserID).Warn("Token blacklist unavailable, refusing token")
		return auth.ErrUnauthenticated
	}
	if blacklisted {
		return auth.ErrUnauthenticated
	}

	if claims.IssuedAt != nil {
		revoked, err := g.tokens.IsTokenRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			g.logger.WithError(err).WithField("user_id", claims.UserID).Warn("Token revocation unavailable, refusing token")
			return auth.ErrUnauthenticated
		}
		if revoked {
			return auth.ErrUnauthenticated
		}
	}
	return nil
}

// DeleteSession revokes the given tokens until they expire
func (g *IdentityGate) DeleteSession(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, err := g.jwt.ValidateToken(token)
		if err != nil {
			continue // already invalid
		}
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := g.tokens.BlacklistToken(ctx, token, ttl); err != nil {
			return err
		}
	}
	return nil
}

// RefreshSession mints a new access token from a valid refresh token
func (g *IdentityGate) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := g.jwt.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != RefreshToken {
		return nil, auth.ErrUnauthenticated
	}
	if err := g.checkNotRevoked(ctx, refreshToken, claims); err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, auth.ErrUnauthenticated
	}

	access, err := g.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, Principal: auth.PrincipalFromUser(user)}, nil
}

// BeginOAuthRedirect starts a provider sign-in and returns the URL to send
// the browser to. Empty redirect targets fall back to the frontend defaults.
func (g *IdentityGate) BeginOAuthRedirect(ctx context.Context, provider, successURL, failureURL string) (string, error) {
	p, ok := g.providers[provider]
	if !ok {
		return "", auth.ErrUnsupportedProvider
	}
	// Redirect targets outside the frontend are ignored so the callback
	// cannot be used as an open redirect.
	if !g.isFrontendURL(successURL) {
		successURL = g.frontendURL + "/auth/callback"
	}
	if !g.isFrontendURL(failureURL) {
		failureURL = g.frontendURL + "/signin?error=oauth_failed"
	}

	state, err := g.tokens.SaveOAuthState(ctx, OAuthState{
		Provider:   provider,
		SuccessURL: successURL,
		FailureURL: failureURL,
	})
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

// CompleteOAuth finishes a provider sign-in. The returned URL is where the
// browser goes next: the success target with a session, or the failure target.
func (g *IdentityGate) CompleteOAuth(ctx context.Context, provider, state, code string) (*Session, string, error) {
	failureURL := g.frontendURL + "/signin?error=oauth_failed"

	pending, err := g.tokens.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, failureURL, err
	}
	if pending.FailureURL != "" {
		failureURL = pending.FailureURL
	}
	if pending.Provider != provider || code == "" {
		return nil, failureURL, auth.ErrInvalidOAuthState
	}

	p, ok := g.providers[provider]
	if !ok {
		return nil, failureURL, auth.ErrUnsupportedProvider
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		g.logger.WithError(err).WithField("provider", provider).Warn("OAuth exchange failed")
		return nil, failureURL, fmt.Errorf("oauth exchange: %w", err)
	}

	user, err := g.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, failureURL, err
	}
	if user == nil {
		user, err = g.users.CreateUser(ctx, identity.Email, identity.Name, "", auth.AuthProvider(provider))
		if err != nil {
			return nil, failureURL, err
		}
	}

	session, err := g.issueSession(user)
	if err != nil {
		return nil, failureURL, err
	}
	return session, pending.SuccessURL, nil
}

// UpdateProfile changes the caller's name and/or password. When the password
// changes, older tokens are revoked and a fresh session is returned.
func (g *IdentityGate) UpdateProfile(ctx context.Context, principal *auth.Principal, update ProfileUpdate) (*auth.Principal, *Session, error) {
	if principal == nil || principal.UserID == "" {
		return nil, nil, auth.ErrUnauthenticated
	}

	var name *string
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, nil, auth.ErrNameRequired
		}
		name = &trimmed
	}

	var hash *string
	if update.NewPassword != "" {
		if err := g.passwords.ValidatePasswordStrength(update.NewPassword); err != nil {
			return nil, nil, err
		}
		if update.NewPassword != update.ConfirmPassword {
			return nil, nil, auth.ErrPasswordMismatch
		}
		h, err := g.passwords.HashPassword(update.NewPassword)
		if err != nil {
			return nil, nil, err
		}
		hash = &h
	}

	if name == nil && hash == nil {
		user, err := g.users.FindByID(ctx, principal.UserID)
		if err != nil {
			return nil, nil, err
		}
		if user == nil {
			return nil, nil, auth.ErrUserNotFound
		}
		return auth.PrincipalFromUser(user), nil, nil
	}

	user, err := g.users.UpdateProfile(ctx, principal.UserID, name, hash)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, auth.ErrUserNotFound
	}

	var session *Session
	if hash != nil {
		if err := g.tokens.InvalidateUserTokens(ctx, user.ID, g.now()); err != nil {
			return nil, nil, err
		}
		if session, err = g.issueSession(user); err != nil {
			return nil, nil, err
		}
		g.logger.WithField("user_id", user.ID).Info("Password changed")
	}

	return auth.PrincipalFromUser(user), session, nil
}

func (g *IdentityGate) issueSession(user *auth.User) (*Session, error) {
	access, err := g.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := g.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Principal:    auth.PrincipalFromUser(user),
	}, nil
}

func (g *IdentityGate) isFrontendURL(target string) bool {
	if target == "" || g.frontendURL == "" {
		return false
	}
	return target == g.frontendURL || strings.HasPrefix(target, g.frontendURL+"/") || strings.HasPrefix(target, g.frontendURL+"?")
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", auth.ErrInvalidEmail
	}
	return email, nil
}

// IsClientError reports whether err is an expected identity failure rather
// than an infrastructure fault.
func IsClientError(err error) bool {
	for _, target := range []error{
		auth.ErrInvalidCredentials, auth.ErrEmailTaken, auth.ErrUnauthenticated,
		auth.ErrWeakPassword, auth.ErrUnsupportedProvider, auth.ErrInvalidOAuthState,
		auth.ErrUserNotFound, auth.ErrInvalidEmail, auth.ErrNameRequired,
		auth.ErrPasswordMismatch, auth.ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
