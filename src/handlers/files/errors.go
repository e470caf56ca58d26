package files

import (
	"errors"
	"net/http"

	"github.com/drive-clone/api/src/domain/files"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// errorStatus maps a typed drive error to its HTTP status
func errorStatus(err error) (int, string) {
	if errors.Is(err, files.ErrUnauthenticated) {
		return http.StatusUnauthorized, string(files.KindAuthorization)
	}
	typed, ok := files.AsError(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}
	switch typed.Kind {
	case files.KindValidation:
		return http.StatusBadRequest, string(typed.Kind)
	case files.KindAuthorization:
		return http.StatusForbidden, string(typed.Kind)
	case files.KindNotFound:
		return http.StatusNotFound, string(typed.Kind)
	case files.KindConflict:
		return http.StatusConflict, string(typed.Kind)
	case files.KindQuotaExceeded:
		return http.StatusRequestEntityTooLarge, string(typed.Kind)
	case files.KindExternalService:
		return http.StatusBadGateway, string(typed.Kind)
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

// respondError writes err in the uniform error shape. Store failures are
// logged with their cause; the client only sees the operation that failed.
func respondError(c *gin.Context, logger *logrus.Logger, err error, action string) {
	status, code := errorStatus(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"owner_id":   c.GetString("user_id"),
			"action":     action,
		}).WithError(err).Error("Drive operation failed")
		if status == http.StatusInternalServerError {
			message = "Request failed, please try again"
		}
	}
	writeError(c, status, code, message)
}
