package auth

import (
	"errors"
	"net/http"

	"github.com/drive-clone/api/src/domain/auth"
	"github.com/drive-clone/api/src/services/security"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authErrorStatus maps identity errors to HTTP status and error code
func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, auth.ErrUnsupportedProvider):
		return http.StatusNotFound, "unsupported_provider"
	case security.IsClientError(err):
		return http.StatusBadRequest, "validation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": c.GetString("request_id"),
		},
	})
}

// respondAuthError writes err; infrastructure faults are logged and hidden
func respondAuthError(c *gin.Context, logger *logrus.Logger, err error, action string) {
	status, code := authErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"action":     action,
		}).WithError(err).Error("Identity operation failed")
		message = "Request failed, please try again"
	}
	writeError(c, status, code, message)
}
