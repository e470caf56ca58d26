package logic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/drive-clone/api/src/domain/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type staticResolver map[string]*auth.Principal

func (r staticResolver) ResolveCurrentPrincipal(ctx context.Context, credential string) (*auth.Principal, error) {
	if p, ok := r[credential]; ok {
		return p, nil
	}
	return nil, auth.ErrUnauthenticated
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	resolver := staticResolver{"good": {UserID: "user-1", Email: "a@example.com"}}

	r := gin.New()
	r.Use(AuthMiddleware(resolver, logger))
	r.GET("/me", func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "user_id": c.GetString("user_id")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	router := authRouter()

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"no credential", func(r *http.Request) {}, http.StatusUnauthorized, "Missing authorization token"},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"}) }, http.StatusOK, "user-1"},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, http.StatusUnauthorized, "Invalid or expired session"},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized, "Missing authorization token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(2)
	t.Cleanup(rl.Stop)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per IP")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(10)
	t.Cleanup(rl.Stop)

	rl.getLimiter("10.0.0.1")
	rl.cleanup(time.Now())
	assert.Len(t, rl.limiters, 1)

	rl.cleanup(time.Now().Add(time.Hour))
	assert.Empty(t, rl.limiters)
}
