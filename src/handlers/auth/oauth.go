package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OAuthStart godoc
// @Summary Start provider sign-in
// @Description Redirects the browser to the provider's consent page
// @Tags Authentication
// @Param provider path string true "Provider name" Enums(google)
// @Param successUrl query string false "Frontend URL to return to on success"
// @Param failureUrl query string false "Frontend URL to return to on failure"
// @Success 302 "Redirect to provider"
// @Failure 404 {object} map[string]interface{} "Unsupported provider"
// @Router /auth/oauth/{provider} [get]
func (h *Handler) OAuthStart(c *gin.Context) {
	target, err := h.gate.BeginOAuthRedirect(
		c.Request.Context(),
		c.Param("provider"),
		c.Query("successUrl"),
		c.Query("failureUrl"),
	)
	if err != nil {
		respondAuthError(c, h.logger, err, "oauth_start")
		return
	}
	c.Redirect(http.StatusFound, target)
}

// OAuthCallback godoc
// @Summary Finish provider sign-in
// @Description Exchanges the authorization code, sets the session cookies and redirects to the frontend
// @Tags Authentication
// @Param provider path string true "Provider name"
// @Param state query string true "State issued by OAuthStart"
// @Param code query string true "Authorization code"
// @Success 302 "Redirect to the frontend"
// @Router /auth/oauth/{provider}/callback [get]
func (h *Handler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	log := h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"provider":   provider,
	})

	code := c.Query("code")
	if providerErr := c.Query("error"); providerErr != "" {
		log.WithField("provider_error", providerErr).Warn("Provider denied sign-in")
		code = ""
	}

	session, next, err := h.gate.CompleteOAuth(c.Request.Context(), provider, c.Query("state"), code)
	if err != nil {
		log.WithError(err).Warn("OAuth sign-in failed")
		c.Redirect(http.StatusFound, next)
		return
	}

	h.cookies.SetSessionCookies(c, session)
	log.WithField("user_id", session.Principal.UserID).Info("OAuth sign-in completed")
	c.Redirect(http.StatusFound, next)
}
