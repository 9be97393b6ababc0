package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/repository/filestore"
	"github.com/sakif/portfolio/internal/validation"
)

func newTestContentService(t *testing.T) (*ContentService, *filestore.Store) {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	svc := NewContentService(store, validation.New(), discardLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func backupCount(t *testing.T, store *filestore.Store, name string) int {
	t.Helper()
	backups, err := store.ListBackups(context.Background(), name)
	require.NoError(t, err)
	return len(backups)
}

// failingRepo refuses every write.
type failingRepo struct{ repository.DocumentRepository }

var errDiskFull = errors.New("disk full")

func (failingRepo) Put(context.Context, string, []byte) (*model.Backup, error) {
	return nil, errDiskFull
}

func TestGet_ReturnsDefaultVerbatimWhenAbsent(t *testing.T) {
	svc, _ := newTestContentService(t)

	for _, res := range content.All() {
		got, err := svc.Get(context.Background(), res.Name)
		require.NoError(t, err, res.Name)
		assert.Equal(t, string(res.Default()), string(got), res.Name)
	}
}

func TestGet_UnknownResource(t *testing.T) {
	svc, _ := newTestContentService(t)

	_, err := svc.Get(context.Background(), "projects")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGet_CorruptStoredDocumentFallsBackToDefault(t *testing.T) {
	svc, store := newTestContentService(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "about.json"), []byte(`{"bio":`), 0o644))

	got, err := svc.Get(context.Background(), content.About)
	require.NoError(t, err)
	res, _ := content.Lookup(content.About)
	assert.Equal(t, string(res.Default()), string(got))
}

func TestSave_RoundTripIsByteIdentical(t *testing.T) {
	svc, store := newTestContentService(t)
	ctx := context.Background()
	body := `{"bio":"X","stats":[],"highlights":[],"badges":["A"]}`

	saved, err := svc.Save(ctx, content.About, []byte(body))
	require.NoError(t, err)
	assert.Equal(t, body, string(saved))

	got, err := svc.Get(ctx, content.About)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	// Stored pretty-printed, key order preserved.
	onDisk, err := os.ReadFile(filepath.Join(store.Dir(), "about.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(onDisk), "{\n  \"bio\": \"X\",\n  \"stats\": []"), string(onDisk))

	assert.Equal(t, 1, backupCount(t, store, content.About))
}

func TestSave_KeepsUnknownFieldsAndKeyOrder(t *testing.T) {
	svc, _ := newTestContentService(t)
	body := `{"title":"T","description":"D","keywords":["go"],"ogImage":"/og.png","twitterCard":"summary","extra":{"b":1,"a":2}}`

	saved, err := svc.Save(context.Background(), content.SEO, []byte(body))
	require.NoError(t, err)
	assert.Equal(t, body, string(saved))
}

func TestSave_RejectsInvalidBodiesWithoutWriting(t *testing.T) {
	svc, store := newTestContentService(t)

	tests := []struct {
		name     string
		resource string
		body     string
	}{
		{name: "malformed JSON", resource: content.About, body: `{"bio":`},
		{name: "wrong shape", resource: content.Skills, body: `{"name":"Go"}`},
		{name: "level out of range", resource: content.Skills, body: `[{"name":"Go","level":101,"category":"technical"}]`},
		{name: "unknown skill category", resource: content.Skills, body: `[{"name":"Go","level":50,"category":"magic"}]`},
		{name: "experience without type", resource: content.Experience, body: `[{"title":"Dev","company":"ACME"}]`},
		{name: "bad resume template", resource: content.Resume, body: `{"personalInfo":{},"summary":"","template":"fancy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), tt.resource, []byte(tt.body))
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, 0, backupCount(t, store, tt.resource))
		})
	}
}

func TestSave_ContactsAreNotReplaceable(t *testing.T) {
	svc, _ := newTestContentService(t)

	_, err := svc.Save(context.Background(), content.Contacts, []byte(`[]`))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestSave_RepositoryFailure(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	svc := NewContentService(failingRepo{store}, validation.New(), discardLogger())

	_, err = svc.Save(context.Background(), content.About, []byte(`{"bio":"X"}`))
	assert.ErrorIs(t, err, errDiskFull)

	got, err := svc.Get(context.Background(), content.About)
	require.NoError(t, err)
	res, _ := content.Lookup(content.About)
	assert.Equal(t, string(res.Default()), string(got))
}

func TestListBackups(t *testing.T) {
	svc, _ := newTestContentService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Save(ctx, content.SkillCategories, []byte(`[]`))
		require.NoError(t, err)
	}

	backups, err := svc.ListBackups(ctx, content.SkillCategories)
	require.NoError(t, err)
	assert.Len(t, backups, 3)

	_, err = svc.ListBackups(ctx, "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestResumeView_SplitsExperienceAndSkills(t *testing.T) {
	svc, _ := newTestContentService(t)

	view, err := svc.ResumeView(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, view.Work, 2)
	assert.Len(t, view.Education, 2)
	assert.Len(t, view.Technical, 13)
	assert.Len(t, view.Soft, 6)
	assert.NotEmpty(t, view.Resume.PersonalInfo.Name)
}

func TestResumeView_TemplateSelection(t *testing.T) {
	svc, _ := newTestContentService(t)
	ctx := context.Background()

	view, err := svc.ResumeView(ctx, "classic")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateClassic, view.Template)

	_, err = svc.Save(ctx, content.Resume, []byte(`{"personalInfo":{"name":"N"},"summary":"S","template":"minimal"}`))
	require.NoError(t, err)

	view, err = svc.ResumeView(ctx, "bogus")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateMinimal, view.Template)
}

func decodePosts(t *testing.T, body []byte) []model.BlogPost {
	t.Helper()
	var posts []model.BlogPost
	require.NoError(t, json.Unmarshal(body, &posts))
	return posts
}

func TestDecode(t *testing.T) {
	svc, _ := newTestContentService(t)

	var about model.About
	require.NoError(t, svc.Decode(context.Background(), content.About, &about))
	assert.NotEmpty(t, about.Bio)
}
