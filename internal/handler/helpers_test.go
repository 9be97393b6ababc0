package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository/filestore"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/validation"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "hunter22-but-longer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store   *filestore.Store
	content *service.ContentService
	auth    *service.AuthService
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789abcdef", 0)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	hash, err := passwords.Hash(testAdminPassword)
	require.NoError(t, err)

	authSvc := service.NewAuthService(service.AdminCredentials{
		Email:        testAdminEmail,
		Name:         "Test Admin",
		PasswordHash: hash,
	}, tokens, passwords, discardLogger())

	return &testEnv{
		store:   store,
		content: service.NewContentService(store, validation.New(), discardLogger()),
		auth:    authSvc,
		tokens:  tokens,
	}
}

// asAdmin puts an admin session in the request context, standing in for
// auth.RequireAdmin.
func asAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &auth.Session{AdminUser: model.AdminUser{Email: testAdminEmail, Role: model.RoleAdmin}}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}

// contentRouter mounts the document API the way the server does, with every
// request signed in as admin.
func (e *testEnv) contentRouter() http.Handler {
	h := handler.NewContentHandler(e.content, discardLogger())
	r := chi.NewRouter()
	r.Use(asAdmin)
	r.Get("/api/portfolio/blog", h.HandleListBlog)
	r.Get("/api/portfolio/blog/{slug}", h.HandleGetBlogPost)
	r.Post("/api/portfolio/blog", h.HandleSaveBlog)
	r.Delete("/api/portfolio/blog", h.HandleDeleteBlog)
	r.Get("/api/portfolio/{resource}", h.HandleGet)
	r.Post("/api/portfolio/{resource}", h.HandleSave)
	r.Get("/api/portfolio/{resource}/backups", h.HandleBackups)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) storedBody(t *testing.T, name string) string {
	t.Helper()
	doc, err := e.store.Get(context.Background(), name)
	require.NoError(t, err)
	return string(doc.Body)
}

func (e *testEnv) backups(t *testing.T, name string) []model.Backup {
	t.Helper()
	backups, err := e.store.ListBackups(context.Background(), name)
	require.NoError(t, err)
	return backups
}

func (e *testEnv) backupBody(t *testing.T, id string) string {
	t.Helper()
	b, err := os.ReadFile(e.store.BackupPath(id))
	require.NoError(t, err)
	return string(b)
}
