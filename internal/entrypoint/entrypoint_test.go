package entrypoint

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/entities"
	"github.com/mrlokans/companion/internal/importers"
)

func writeExport(t *testing.T, path string) {
	t.Helper()
	files := map[string]string{
		"personal_information/personal_information/personal_information.json": `{"profile_user":[{"string_map_data":{"Username":{"value":"jane"}}}]}`,
		"your_instagram_activity/content/posts_1.json":                        `[{"title":"hello","creation_timestamp":1700000000,"media":[{"uri":"media/posts/1.jpg"}]}]`,
		"connections/followers_and_following/followers_1.json":                `[{"string_list_data":[{"href":"https://www.instagram.com/ann","value":"ann"}]}]`,
		"connections/followers_and_following/following.json":                  `{"relationships_following":[]}`,

		"media/posts/1.jpg": "jpeg",
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestNewImportStack_ImportsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "companion.db"))
	require.NoError(t, err)
	defer db.Close()

	opts := ImportOptions{
		MediaDir:   filepath.Join(dir, "media"),
		ScratchDir: filepath.Join(dir, "scratch"),
	}
	stack := NewImportStack(afero.NewOsFs(), db, opts)

	archivePath := filepath.Join(dir, "export.zip")
	writeExport(t, archivePath)

	result := stack.Service.Import(context.Background(), importers.FilePicker{Path: archivePath})
	require.True(t, result.Success, result.Error)

	stored, err := stack.Profiles.Load()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "jane", stored[0].Username)
	require.Len(t, stored[0].Posts, 1)
	assert.True(t, stack.Media.Contains(stored[0].Posts[0].MediaURLs[0]))

	history, err := stack.Sessions.List(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entities.ImportStatusSucceeded, history[0].Status)

	entries, err := os.ReadDir(opts.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.MediaDir = "/data/media"
	cfg.Import.CopyWorkers = 8

	opts := ImportOptionsFromConfig(cfg)

	assert.Equal(t, "/data/media", opts.MediaDir)
	assert.Equal(t, cfg.Storage.ScratchDir, opts.ScratchDir)
	assert.Equal(t, 8, opts.CopyWorkers)
	assert.Equal(t, cfg.Import.MaxExtractedBytes, opts.MaxExtractedBytes)
}

func TestCheckWritableDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, checkWritableDir(fs, "/data/media"))

	entries, err := afero.ReadDir(fs, "/data/media")
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is removed")

	err = checkWritableDir(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/data/media")
	assert.Error(t, err)
}
