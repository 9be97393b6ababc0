package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/repository/filestore"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	about, _ := content.Lookup(content.About)
	_, err = repo.Put(ctx, content.About, []byte(`{"bio":"mine"}`))
	require.NoError(t, err)

	t.Run("keeps existing documents", func(t *testing.T) {
		n, err := seed(ctx, repo, content.All(), false, logger)
		require.NoError(t, err)
		assert.Equal(t, len(content.All())-1, n)

		doc, err := repo.Get(ctx, content.About)
		require.NoError(t, err)
		assert.JSONEq(t, `{"bio":"mine"}`, string(doc.Body))
	})

	t.Run("force overwrites", func(t *testing.T) {
		n, err := seed(ctx, repo, []content.Resource{about}, true, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		doc, err := repo.Get(ctx, content.About)
		require.NoError(t, err)
		assert.Equal(t, string(about.Default()), string(doc.Body))

		backups, err := repo.ListBackups(ctx, content.About)
		require.NoError(t, err)
		assert.Len(t, backups, 2)
	})
}
