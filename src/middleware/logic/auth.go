package logic

import (
	"context"
	"net/http"
	"strings"

	"github.com/drive-clone/api/src/domain/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AccessTokenCookie carries the session credential
const AccessTokenCookie = "access_token"

// PrincipalResolver turns a session credential into a principal
type PrincipalResolver interface {
	ResolveCurrentPrincipal(ctx context.Context, credential string) (*auth.Principal, error)
}

// CredentialFromRequest returns the session credential from the access
// cookie, falling back to an Authorization: Bearer header.
func CredentialFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session. On success the
// principal is attached to the request context for the services, and
// user_id / user_email are set on the gin context for logging.
func AuthMiddleware(gate PrincipalResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("request_id")

		credential := CredentialFromRequest(c)
		if credential == "" {
			abortUnauthorized(c, "Missing authorization token", requestID)
			return
		}

		principal, err := gate.ResolveCurrentPrincipal(c.Request.Context(), credential)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"path":       c.Request.URL.Path,
				"ip":         c.ClientIP(),
			}).WithError(err).Debug("Session rejected")
			abortUnauthorized(c, "Invalid or expired session", requestID)
			return
		}

		c.Request = c.Request.WithContext(auth.ContextWithPrincipal(c.Request.Context(), principal))
		c.Set("user_id", principal.UserID)
		c.Set("user_email", principal.Email)
		c.Next()
	}
}

// PrincipalFrom returns the principal attached by AuthMiddleware
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	return auth.PrincipalFromContext(c.Request.Context())
}

func abortUnauthorized(c *gin.Context, message, requestID string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":       "unauthorized",
			"message":    message,
			"request_id": requestID,
		},
	})
}
