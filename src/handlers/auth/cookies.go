package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/drive-clone/api/src/middleware/logic"
	"github.com/drive-clone/api/src/services/security"
	"github.com/gin-gonic/gin"
)

// Cookie configuration constants
const (
	AccessTokenCookieName  = logic.AccessTokenCookie
	RefreshTokenCookieName = "refresh_token"

	// Must match the token lifetimes in security.JWTService
	AccessTokenMaxAge  = int(security.AccessTokenTTL / time.Second)
	RefreshTokenMaxAge = int(security.RefreshTokenTTL / time.Second)

	refreshTokenPath = "/auth"
)

// CookieConfig holds the configuration for auth cookies
type CookieConfig struct {
	Domain string
	Secure bool
}

// NewCookieConfig derives cookie settings from the environment. Outside
// production cookies are not marked Secure unless the request used TLS.
func NewCookieConfig(environment, domain string) CookieConfig {
	return CookieConfig{
		Domain: strings.TrimSpace(domain),
		Secure: environment == "production",
	}
}

func (cc CookieConfig) secure(c *gin.Context) bool {
	return cc.Secure || c.Request.TLS != nil
}

func (cc CookieConfig) set(c *gin.Context, name, value string, maxAge int, path string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, path, cc.Domain, cc.secure(c), true)
}

// SetSessionCookies stores a session as HttpOnly cookies. The refresh token
// is only sent to the auth endpoints.
func (cc CookieConfig) SetSessionCookies(c *gin.Context, session *security.Session) {
	cc.set(c, AccessTokenCookieName, session.AccessToken, AccessTokenMaxAge, "/")
	if session.RefreshToken != "" {
		cc.set(c, RefreshTokenCookieName, session.RefreshToken, RefreshTokenMaxAge, refreshTokenPath)
	}
}

// ClearSessionCookies removes both auth cookies
func (cc CookieConfig) ClearSessionCookies(c *gin.Context) {
	cc.set(c, AccessTokenCookieName, "", -1, "/")
	cc.set(c, RefreshTokenCookieName, "", -1, refreshTokenPath)
}

// GetRefreshToken extracts the refresh token from its cookie
func GetRefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(RefreshTokenCookieName); err == nil && token != "" {
		return token
	}
	return ""
}
