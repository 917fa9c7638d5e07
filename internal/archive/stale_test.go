package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RemoveStale(t *testing.T) {
	root := "/tmp/companion-import"
	fs := afero.NewMemMapFs()
	old := time.Now().Add(-3 * time.Hour)

	for _, dir := range []string{"import-1-abc", "import-2-def", "unrelated"} {
		require.NoError(t, fs.MkdirAll(filepath.Join(root, dir), 0755))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(root, dir, "posts_1.json"), []byte("[]"), 0644))
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, "upload-123.zip"), []byte("zip"), 0644))

	for _, name := range []string{"import-1-abc", "unrelated", "upload-123.zip"} {
		require.NoError(t, fs.Chtimes(filepath.Join(root, name), old, old))
	}

	extractor := NewExtractor(fs, root, 0)
	removed, err := extractor.RemoveStale(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	for name, want := range map[string]bool{
		"import-1-abc":   false,
		"import-2-def":   true,
		"unrelated":      true,
		"upload-123.zip": false,
	} {
		exists, err := afero.Exists(fs, filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, want, exists, name)
	}
}

func TestExtractor_RemoveStale_MissingRoot(t *testing.T) {
	extractor := NewExtractor(afero.NewMemMapFs(), "/nowhere", 0)

	removed, err := extractor.RemoveStale(time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestExtractor_RemoveStale_SkipsDirsInUse(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "export.zip")
	writeZip(t, archivePath, map[string]string{"posts_1.json": "[]"})

	fs := afero.NewOsFs()
	extractor := NewExtractor(fs, filepath.Join(tmpDir, "scratch"), 0)

	scratchDir, err := extractor.Extract(archivePath)
	require.NoError(t, err)

	// A long transform stops touching the directory once extraction ends.
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, fs.Chtimes(scratchDir, old, old))

	removed, err := extractor.RemoveStale(time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
	exists, err := afero.DirExists(fs, scratchDir)
	require.NoError(t, err)
	assert.True(t, exists)

	extractor.Release(scratchDir)

	removed, err = extractor.RemoveStale(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	exists, err = afero.DirExists(fs, scratchDir)
	require.NoError(t, err)
	assert.False(t, exists)
}
