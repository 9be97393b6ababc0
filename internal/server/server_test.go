package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/repository/filestore"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/web"
)

const (
	adminEmail    = "owner@example.com"
	adminPassword = "correct-horse-battery"
)

type testServer struct {
	handler http.Handler
	store   *filestore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("server-test-secret-0123456789abcdef", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	hash, err := passwords.Hash(adminPassword)
	require.NoError(t, err)
	authSvc := service.NewAuthService(service.AdminCredentials{Email: adminEmail, PasswordHash: hash}, tokens, passwords, logger)

	srv, err := New(Config{
		Port:            0,
		PublicDir:       t.TempDir(),
		LoginLimit:      3,
		ContactLimit:    2,
		RateLimitWindow: time.Minute,
	}, Deps{
		Repo:      store,
		Tokens:    tokens,
		Auth:      authSvc,
		Templates: web.Templates,
		Static:    web.Static(),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testServer{handler: srv.Handler(), store: store}
}

func (ts *testServer) request(t *testing.T, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.RemoteAddr = "192.0.2.10:4321"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := ts.request(t, http.MethodPost, "/api/auth/login",
		`{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestUnauthenticatedWritesAreRejected(t *testing.T) {
	ts := newTestServer(t)

	writes := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/api/portfolio/about", `{"bio":"X","stats":[],"highlights":[],"badges":["A"]}`},
		{http.MethodPost, "/api/portfolio/blog", `{"title":"Sneaky"}`},
		{http.MethodDelete, "/api/portfolio/blog?id=1", ""},
		{http.MethodPost, "/api/portfolio/skills", `[]`},
		{http.MethodGet, "/api/portfolio/about/backups", ""},
		{http.MethodGet, "/api/portfolio/blog/backups", ""},
		{http.MethodGet, "/api/admin/contacts", ""},
	}

	for _, w := range writes {
		rr := ts.request(t, w.method, w.target, w.body, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", w.method, w.target)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
	}

	forged := &http.Cookie{Name: auth.CookieName, Value: "not-a-token"}
	rr := ts.request(t, http.MethodPost, "/api/portfolio/about", `{"bio":"X"}`, forged)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	for _, name := range []string{"about", "blog", "skills"} {
		_, err := ts.store.Get(context.Background(), name)
		assert.Error(t, err, name)
		backups, err := ts.store.ListBackups(context.Background(), name)
		require.NoError(t, err)
		assert.Empty(t, backups, name)
	}
}

func TestAdminFlow(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	body := `{"bio":"X","stats":[],"highlights":[],"badges":["A"]}`
	rr := ts.request(t, http.MethodPost, "/api/portfolio/about", body, cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(t, http.MethodGet, "/api/portfolio/about", "", nil)
	assert.Equal(t, body, rr.Body.String())

	rr = ts.request(t, http.MethodDelete, "/api/portfolio/blog?id=3", "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, http.MethodGet, "/api/portfolio/blog/backups", "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"blog"`)

	rr = ts.request(t, http.MethodGet, "/api/portfolio/blog/ai-ml-production-lessons-learned", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(t, http.MethodGet, "/api/portfolio/contacts", "", cookie)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, http.MethodGet, "/admin", "", cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminPagesRedirectToLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/admin/edit/blog?x=1", "", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/login?callbackUrl=%2Fadmin%2Fedit%2Fblog%3Fx%3D1", rr.Header().Get("Location"))

	rr = ts.request(t, http.MethodGet, "/admin/login", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPublicRoutes(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/blog", "/resume", "/healthz", "/api/config/status", "/api/auth/session", "/static/site.css"} {
		rr := ts.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := ts.request(t, http.MethodGet, "/api/portfolio/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(t, http.MethodGet, "/api/portfolio/resume/pdf", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = ts.request(t, http.MethodGet, "/resume.pdf", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	ts := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = ts.request(t, http.MethodPost, "/api/auth/login", `{"email":"x@example.com","password":"nope"}`, nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}
