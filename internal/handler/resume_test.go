package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/resume"
)

// MockRenderer records the HTML it was asked to print and returns a canned
// result, so no browser is needed.
type MockRenderer struct {
	CapturedHTML string
	ReturnPDF    []byte
	ReturnErr    error
}

func (m *MockRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	m.CapturedHTML = string(html)
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnPDF, nil
}

func (e *testEnv) resumeRouter(r resume.Renderer) http.Handler {
	h := handler.NewResumeHandler(e.content, r, discardLogger())
	router := chi.NewRouter()
	router.Get("/resume", h.HandlePage)
	router.Get("/api/portfolio/resume/pdf", h.HandlePDF)
	router.Get("/api/portfolio/resume/view", h.HandleJSON)
	return router
}

func TestResumePDF(t *testing.T) {
	t.Run("renders with the requested template", func(t *testing.T) {
		env := newTestEnv(t)
		mock := &MockRenderer{ReturnPDF: minimalPDF}

		rr := do(t, env.resumeRouter(mock), http.MethodGet, "/api/portfolio/resume/pdf?template=minimal", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment; filename=")
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "_Resume.pdf")
		assert.Equal(t, minimalPDF, rr.Body.Bytes())
		assert.Contains(t, mock.CapturedHTML, `<body class="minimal">`)
	})

	t.Run("renderer failure is 500", func(t *testing.T) {
		env := newTestEnv(t)
		mock := &MockRenderer{ReturnErr: errors.New("chrome crashed")}

		rr := do(t, env.resumeRouter(mock), http.MethodGet, "/api/portfolio/resume/pdf", "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "chrome crashed")
	})

	t.Run("disabled renderer is 503", func(t *testing.T) {
		env := newTestEnv(t)
		rr := do(t, env.resumeRouter(nil), http.MethodGet, "/api/portfolio/resume/pdf", "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestResumePage(t *testing.T) {
	env := newTestEnv(t)
	router := env.resumeRouter(nil)

	rr := do(t, router, http.MethodGet, "/resume?template=classic", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `<body class="classic">`)

	rr = do(t, router, http.MethodGet, "/resume?template=neon", "")
	assert.Contains(t, rr.Body.String(), `<body class="modern">`)
}

func TestResumeViewJSON(t *testing.T) {
	env := newTestEnv(t)
	rr := do(t, env.resumeRouter(nil), http.MethodGet, "/api/portfolio/resume/view", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var view model.ResumeView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Len(t, view.Work, 2)
	assert.Len(t, view.Education, 2)
	assert.Len(t, view.Technical, 13)
	assert.Len(t, view.Soft, 6)
}
