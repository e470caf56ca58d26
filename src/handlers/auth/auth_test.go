package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/drive-clone/api/src/middleware/logic"
	"github.com/drive-clone/api/test/testutils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *testutils.TestEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := testutils.NewTestEnv(t)

	h := NewHandler(env.Gate, nil, NewCookieConfig("test", ""), env.Logger)
	limiter := logic.NewRateLimiter(1000)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "test-request-id")
		c.Next()
	})
	h.RegisterGlobalRoutes(router.Group("/auth"), limiter)
	v1 := router.Group("/api/v1")
	v1.Use(logic.AuthMiddleware(env.Gate, env.Logger))
	h.RegisterV1Routes(v1)

	return router, env
}

func postJSON(router *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := postJSON(router, "/auth/signup", `{"email":"Ada@Example.com","password":"password123","name":"Ada"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotContains(t, w.Body.String(), "password")

	access := cookieByName(w, AccessTokenCookieName)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, AccessTokenMaxAge, access.MaxAge)

	refresh := cookieByName(w, RefreshTokenCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, "/auth", refresh.Path)
	assert.Equal(t, RefreshTokenMaxAge, refresh.MaxAge)
}

func TestSignup_Errors(t *testing.T) {
	router, env := setupAuthRouter(t)
	env.SignUp(t, "taken@example.com", "password123")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing fields", `{"email":"a@example.com"}`, http.StatusBadRequest, "invalid_request"},
		{"malformed json", `{`, http.StatusBadRequest, "invalid_request"},
		{"weak password", `{"email":"a@example.com","password":"short"}`, http.StatusBadRequest, "validation_error"},
		{"invalid email", `{"email":"nope","password":"password123"}`, http.StatusBadRequest, "validation_error"},
		{"duplicate email", `{"email":"TAKEN@example.com","password":"password123"}`, http.StatusConflict, "email_taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/auth/signup", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.Contains(t, w.Body.String(), "test-request-id")
		})
	}
}

func TestSigninProfileSignout(t *testing.T) {
	router, env := setupAuthRouter(t)
	env.SignUp(t, "ada@example.com", "password123")

	w := postJSON(router, "/auth/signin", `{"email":"ada@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")

	w = postJSON(router, "/auth/signin", `{"email":"ada@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	access := cookieByName(w, AccessTokenCookieName)
	refresh := cookieByName(w, RefreshTokenCookieName)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.AddCookie(access)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")

	w = postJSON(router, "/auth/signout", ``, access, refresh)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := cookieByName(w, AccessTokenCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.AddCookie(access)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked session is refused")

	w = postJSON(router, "/auth/refresh", ``, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh token is revoked too")
}

func TestSignout_RequiresSession(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := postJSON(router, "/auth/signout", ``)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh(t *testing.T) {
	router, env := setupAuthRouter(t)
	session := env.SignUp(t, "ada@example.com", "password123")

	w := postJSON(router, "/auth/refresh", ``)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/auth/refresh", ``, &http.Cookie{Name: RefreshTokenCookieName, Value: session.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, cookieByName(w, AccessTokenCookieName))
	assert.Nil(t, cookieByName(w, RefreshTokenCookieName), "refresh keeps the existing refresh cookie")

	w = postJSON(router, "/auth/refresh", `{"refresh_token":"`+session.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/auth/refresh", `{"refresh_token":"`+session.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	router, env := setupAuthRouter(t)
	session := env.SignUp(t, "ada@example.com", "password123")

	patch := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/profile", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testutils.Authorize(req, session)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := patch(`{"name":"Ada Lovelace"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Lovelace")
	assert.Nil(t, cookieByName(w, AccessTokenCookieName))

	w = patch(`{"newPassword":"new-password","confirmPassword":"different"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "passwords do not match")

	w = patch(`{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = patch(`{"newPassword":"new-password","confirmPassword":"new-password"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, cookieByName(w, AccessTokenCookieName), "password change issues a new session")
}

func TestOAuthFlow(t *testing.T) {
	router, env := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/oauth/github", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/oauth/google?successUrl="+url.QueryEscape("http://localhost:3000/files"), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	req = httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?state="+state+"&code=abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/files", w.Header().Get("Location"))
	assert.NotNil(t, cookieByName(w, AccessTokenCookieName))

	user, err := env.Users.FindByEmail(req.Context(), "oauth@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	// Replayed state goes to the failure page without a session.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?state="+state+"&code=abc", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/signin?error=oauth_failed", w.Header().Get("Location"))
	assert.Nil(t, cookieByName(w, AccessTokenCookieName))
}

func TestOAuthCallback_ProviderDenied(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/oauth/google", nil))
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/auth/oauth/google/callback?state="+location.Query().Get("state")+"&error=access_denied&code=abc", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/signin?error=oauth_failed", w.Header().Get("Location"))
}
