package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/drive-clone/api/docs"
	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/server"
	"github.com/drive-clone/api/test/testutils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// client drives the full HTTP stack the way a browser would, keeping cookies
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func setupServer(t *testing.T) *client {
	t.Helper()
	env := testutils.NewTestEnv(t)

	srv, err := server.NewServerWithConnections(env.Config, env.Logger, env.DB, env.Redis, env.OAuth)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &client{t: t, handler: srv.Handler(), cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *client) json(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) upload(parentID, name, contentType, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(c.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(c.t, err)
	if parentID != "" {
		require.NoError(c.t, mw.WriteField("parentId", parentID))
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestIntegration_DriveScenario(t *testing.T) {
	c := setupServer(t)

	w := c.json(http.MethodPost, "/auth/signup", gin.H{"email": "u1@example.com", "password": "password123", "name": "U1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Contains(t, c.cookies, "access_token")

	// Empty storage to start with.
	w = c.get("/api/v1/files")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[struct {
		Items []files.Entry `json:"items"`
	}](t, w).Items)

	w = c.json(http.MethodPost, "/api/v1/files/folders", gin.H{"name": "Docs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	docs := decode[files.Entry](t, w)

	w = c.get("/api/v1/files")
	require.Equal(t, http.StatusOK, w.Code)
	root := decode[struct {
		Items []files.Entry `json:"items"`
	}](t, w).Items
	require.Len(t, root, 1)
	assert.Equal(t, "Docs", root[0].Name)
	assert.Equal(t, files.EntryTypeFolder, root[0].Type)

	w = c.upload(docs.ID, "a.txt", "text/plain", "0123456789")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	uploaded := decode[struct {
		Results []struct {
			Entry *files.Entry `json:"entry"`
		} `json:"results"`
	}](t, w).Results
	require.Len(t, uploaded, 1)
	file := uploaded[0].Entry
	require.NotNil(t, file)

	w = c.get("/api/v1/storage/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[files.StorageSnapshot](t, w)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, int64(10), stats.TotalSize)
	assert.Equal(t, files.CategoryUsage{Count: 1, Size: 10}, stats.Documents)
	assert.Equal(t, files.CategoryUsage{}, stats.Images)
	assert.Equal(t, files.CategoryUsage{}, stats.Videos)
	assert.Equal(t, files.CategoryUsage{}, stats.Others)

	// The signed URL is served by the same API.
	w = c.get("/api/v1/files/" + file.ID + "/view")
	require.Equal(t, http.StatusOK, w.Code)
	viewURL, err := url.Parse(decode[struct {
		URL string `json:"url"`
	}](t, w).URL)
	require.NoError(t, err)

	blob := c.do(httptest.NewRequest(http.MethodGet, viewURL.RequestURI(), nil))
	require.Equal(t, http.StatusOK, blob.Code)
	assert.Equal(t, "0123456789", blob.Body.String())
	assert.Equal(t, "nosniff", blob.Header().Get("X-Content-Type-Options"))

	w = c.do(httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+file.ID, nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	blob = c.do(httptest.NewRequest(http.MethodGet, viewURL.RequestURI(), nil))
	assert.Equal(t, http.StatusNotFound, blob.Code)

	w = c.get("/api/v1/storage/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[files.StorageSnapshot](t, w).TotalFiles)

	// Docs is empty again, so the default reject policy lets it go.
	w = c.do(httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+docs.ID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.json(http.MethodPost, "/auth/signout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = c.get("/api/v1/files")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntegration_NonEmptyFolderDeleteIsRejected(t *testing.T) {
	c := setupServer(t)

	w := c.json(http.MethodPost, "/auth/signup", gin.H{"email": "u2@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.json(http.MethodPost, "/api/v1/files/folders", gin.H{"name": "Docs"})
	require.Equal(t, http.StatusCreated, w.Code)
	docs := decode[files.Entry](t, w)

	w = c.json(http.MethodPost, "/api/v1/files/folders", gin.H{"name": "Inner", "parentId": docs.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+docs.ID, nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"conflict"`)
}

func TestIntegration_OwnersAreIsolated(t *testing.T) {
	alice := setupServer(t)
	bob := &client{t: t, handler: alice.handler, cookies: map[string]*http.Cookie{}}

	require.Equal(t, http.StatusCreated, alice.json(http.MethodPost, "/auth/signup", gin.H{"email": "alice@example.com", "password": "password123"}).Code)
	require.Equal(t, http.StatusCreated, bob.json(http.MethodPost, "/auth/signup", gin.H{"email": "bob@example.com", "password": "password123"}).Code)

	w := alice.upload("", "secret.txt", "text/plain", "alice only")
	require.Equal(t, http.StatusCreated, w.Code)
	secret := decode[struct {
		Results []struct {
			Entry files.Entry `json:"entry"`
		} `json:"results"`
	}](t, w).Results[0].Entry

	w = bob.get("/api/v1/files")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	w = bob.get("/api/v1/files/search?q=secret")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	w = bob.get("/api/v1/files/" + secret.ID + "/download")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = bob.json(http.MethodPatch, "/api/v1/files/"+secret.ID+"/rename", gin.H{"name": "mine.txt"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = alice.get("/api/v1/files/" + secret.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret.txt", decode[files.Entry](t, w).Name)
}

func TestIntegration_AuthRateLimit(t *testing.T) {
	c := setupServer(t)

	codes := make([]int, 0, 6)
	for range 6 {
		codes = append(codes, c.json(http.MethodPost, "/auth/signin", gin.H{"email": "nobody@example.com", "password": "password123"}).Code)
	}
	assert.Equal(t, []int{401, 401, 401, 401, 401, 429}, codes)
}

func TestIntegration_OAuthSignIn(t *testing.T) {
	c := setupServer(t)

	w := c.get("/auth/oauth/google?successUrl=" + url.QueryEscape("http://localhost:3000/drive"))
	require.Equal(t, http.StatusFound, w.Code)
	consent, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.test", consent.Host)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)

	w = c.get("/auth/oauth/google/callback?state=" + url.QueryEscape(state) + "&code=abc")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/drive", w.Header().Get("Location"))
	require.Contains(t, c.cookies, "access_token")

	w = c.get("/api/v1/profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "oauth@example.com")

	// States are single use.
	w = c.get("/auth/oauth/google/callback?state=" + url.QueryEscape(state) + "&code=abc")
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "http://localhost:3000/signin"))
}

func TestIntegration_HealthAndDocs(t *testing.T) {
	c := setupServer(t)

	w := c.get("/health")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.Contains(t, w.Body.String(), `"blob_store":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = c.get("/swagger/doc.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/files/upload")
}
