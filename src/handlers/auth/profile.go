package auth

import (
	"net/http"

	"github.com/drive-clone/api/src/domain/auth"
	"github.com/drive-clone/api/src/middleware/logic"
	"github.com/drive-clone/api/src/services/security"
	"github.com/gin-gonic/gin"
)

// ProfileUpdateRequest is the body of PATCH /api/v1/profile
type ProfileUpdateRequest struct {
	Name            *string `json:"name"`
	NewPassword     string  `json:"newPassword"`
	ConfirmPassword string  `json:"confirmPassword"`
}

// GetProfile godoc
// @Summary Current user
// @Tags Profile
// @Produce json
// @Success 200 {object} map[string]interface{} "The signed-in user"
// @Failure 401 {object} map[string]interface{} "Not signed in"
// @Router /api/v1/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	principal, ok := logic.PrincipalFrom(c)
	if !ok {
		respondAuthError(c, h.logger, auth.ErrUnauthenticated, "profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": principal})
}

// UpdateProfile godoc
// @Summary Update name or password
// @Description A password change signs out every other session
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated user"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Not signed in"
// @Router /api/v1/profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	principal, ok := logic.PrincipalFrom(c)
	if !ok {
		respondAuthError(c, h.logger, auth.ErrUnauthenticated, "profile_update")
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	updated, session, err := h.gate.UpdateProfile(c.Request.Context(), principal, security.ProfileUpdate{
		Name:            req.Name,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondAuthError(c, h.logger, err, "profile_update")
		return
	}
	if session != nil {
		h.cookies.SetSessionCookies(c, session)
	}

	c.JSON(http.StatusOK, gin.H{"user": updated})
}
