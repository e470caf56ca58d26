package auth

import (
	"context"

	"github.com/drive-clone/api/src/middleware/logic"
	"github.com/drive-clone/api/src/services/security"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WelcomeMailer sends the post-signup greeting
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// Handler holds dependencies for auth handlers
type Handler struct {
	gate    security.IdentityGateInterface
	mailer  WelcomeMailer
	cookies CookieConfig
	logger  *logrus.Logger
}

// NewHandler creates a new Auth Handler. mailer may be nil.
func NewHandler(
	gate security.IdentityGateInterface,
	mailer WelcomeMailer,
	cookies CookieConfig,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		gate:    gate,
		mailer:  mailer,
		cookies: cookies,
		logger:  logger,
	}
}

// RegisterGlobalRoutes registers the auth routes (under /auth). Credential
// endpoints share a strict per-IP limiter.
func (h *Handler) RegisterGlobalRoutes(rg *gin.RouterGroup, authLimiter *logic.RateLimiter) {
	limited := authLimiter.Middleware()

	rg.POST("/signup", limited, h.Signup)
	rg.POST("/signin", limited, h.Signin)
	rg.POST("/refresh", limited, h.Refresh)
	rg.POST("/signout", logic.AuthMiddleware(h.gate, h.logger), h.Signout)

	rg.GET("/oauth/:provider", limited, h.OAuthStart)
	rg.GET("/oauth/:provider/callback", h.OAuthCallback)
}

// RegisterV1Routes registers the profile routes on an authenticated group
func (h *Handler) RegisterV1Routes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.PATCH("/profile", h.UpdateProfile)
}
