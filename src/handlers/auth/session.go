package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/drive-clone/api/src/middleware/logic"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// SigninRequest is the body of POST /auth/signin
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest lets non-browser clients send the refresh token in the body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

const welcomeEmailTimeout = 30 * time.Second

// Signup godoc
// @Summary Register a new account
// @Description Creates an email/password account and signs it in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Account details"
// @Success 201 {object} map[string]interface{} "User registered"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 409 {object} map[string]interface{} "Email already registered"
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "Email and password are required")
		return
	}

	principal, err := h.gate.CreateUser(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondAuthError(c, h.logger, err, "signup")
		return
	}

	session, err := h.gate.CreateSession(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, h.logger, err, "signup_session")
		return
	}
	h.cookies.SetSessionCookies(c, session)

	h.sendWelcome(principal.Email, principal.Name)

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"user_id":    principal.UserID,
	}).Info("User registered")

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    principal,
	})
}

func (h *Handler) sendWelcome(email, name string) {
	if h.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeEmailTimeout)
		defer cancel()
		if err := h.mailer.SendWelcomeEmail(ctx, email, name); err != nil {
			h.logger.WithError(err).WithField("email", email).Warn("Welcome email not sent")
		}
	}()
}

// Signin godoc
// @Summary Sign in
// @Description Checks email and password and sets the session cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Signed in"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /auth/signin [post]
func (h *Handler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "Email and password are required")
		return
	}

	session, err := h.gate.CreateSession(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, h.logger, err, "signin")
		return
	}
	h.cookies.SetSessionCookies(c, session)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    session.Principal,
	})
}

// Signout godoc
// @Summary Sign out
// @Description Revokes the current session and clears the cookies
// @Tags Authentication
// @Produce json
// @Success 200 {object} map[string]interface{} "Signed out"
// @Failure 401 {object} map[string]interface{} "Not signed in"
// @Router /auth/signout [post]
func (h *Handler) Signout(c *gin.Context) {
	access := logic.CredentialFromRequest(c)
	refresh := GetRefreshToken(c)

	if err := h.gate.DeleteSession(c.Request.Context(), access, refresh); err != nil {
		respondAuthError(c, h.logger, err, "signout")
		return
	}
	h.cookies.ClearSessionCookies(c)

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Issues a new access token from the refresh cookie (or body)
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token (optional if using cookies)"
// @Success 200 {object} map[string]interface{} "New access token issued"
// @Failure 400 {object} map[string]interface{} "Missing refresh token"
// @Failure 401 {object} map[string]interface{} "Invalid or revoked refresh token"
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	refreshToken := GetRefreshToken(c)
	if refreshToken == "" {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "Missing refresh token")
		return
	}

	session, err := h.gate.RefreshSession(c.Request.Context(), refreshToken)
	if err != nil {
		respondAuthError(c, h.logger, err, "refresh")
		return
	}
	h.cookies.SetSessionCookies(c, session)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": session.Principal})
}
