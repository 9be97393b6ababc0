package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/model"
)

func (e *testEnv) contactRouter() http.Handler {
	h := handler.NewContactHandler(e.content, discardLogger())
	r := chi.NewRouter()
	r.Post("/api/contact", h.HandleSubmit)
	r.Get("/api/admin/contacts", h.HandleList)
	r.Patch("/api/admin/contacts/{id}", h.HandleUpdateStatus)
	r.Delete("/api/admin/contacts/{id}", h.HandleDelete)
	return r
}

func submitContact(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func listContacts(t *testing.T, h http.Handler) []model.ContactMessage {
	t.Helper()
	rr := do(t, h, http.MethodGet, "/api/admin/contacts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var msgs []model.ContactMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msgs))
	return msgs
}

func TestContactLifecycle(t *testing.T) {
	env := newTestEnv(t)
	router := env.contactRouter()

	first := submitContact(t, router, `{"name":"Ann","email":"ann@example.com","message":"Hello"}`)
	second := submitContact(t, router, `{"name":"Bob","email":"bob@example.com","subject":"Hi","message":"Job offer","status":"replied","id":"forged"}`)

	msgs := listContacts(t, router)
	require.Len(t, msgs, 2)
	assert.Equal(t, second, msgs[0].ID)
	assert.Equal(t, model.ContactUnread, msgs[0].Status)
	assert.Equal(t, first, msgs[1].ID)

	rr := do(t, router, http.MethodPatch, "/api/admin/contacts/"+first, `{"status":"read"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, router, http.MethodPatch, "/api/admin/contacts/"+first, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodDelete, "/api/admin/contacts/"+second, "")
	require.Equal(t, http.StatusOK, rr.Code)

	msgs = listContacts(t, router)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.ContactRead, msgs[0].Status)

	rr = do(t, router, http.MethodDelete, "/api/admin/contacts/"+second, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContactSubmitRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"name":`},
		{name: "missing message", body: `{"name":"Ann","email":"ann@example.com"}`},
		{name: "bad email", body: `{"name":"Ann","email":"not-an-email","message":"Hi"}`},
		{name: "blank name", body: `{"name":"   ","email":"ann@example.com","message":"Hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := do(t, env.contactRouter(), http.MethodPost, "/api/contact", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, env.backups(t, "contacts"))
		})
	}
}

func TestConfigStatusAndHealth(t *testing.T) {
	status := handler.ConfigStatus{AdminEmail: true, SessionSecret: true, StoreDriver: "sqlite"}
	rr := do(t, handler.HandleConfigStatus(status), http.MethodGet, "/api/config/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"adminEmail":true,"adminPasswordHash":false,"sessionSecret":true,"githubOAuth":false,"redisCache":false,"pdfRenderer":false,"storeDriver":"sqlite"}`, rr.Body.String())

	rr = do(t, http.HandlerFunc(handler.HandleHealth), http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
