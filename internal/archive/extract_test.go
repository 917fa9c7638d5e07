package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip builds an archive at path from name -> content pairs.
// Names ending in "/" become directory entries.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		if !strings.HasSuffix(name, "/") {
			_, err = fw.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
}

func TestExtractor_Extract(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "export.zip")
	writeZip(t, archivePath, map[string]string{
		"personal_information/":                         "",
		"personal_information/personal_information.json": `{"profile_user":[]}`,
		"media/posts/202301/photo.jpg":                   "jpeg bytes",
	})

	scratchRoot := filepath.Join(tmpDir, "scratch")
	extractor := NewExtractor(afero.NewOsFs(), scratchRoot, 0)

	scratchDir, err := extractor.Extract(archivePath)
	require.NoError(t, err)

	assert.Equal(t, scratchRoot, filepath.Dir(scratchDir))
	assert.True(t, strings.HasPrefix(filepath.Base(scratchDir), ScratchPrefix))

	data, err := os.ReadFile(filepath.Join(scratchDir, "media", "posts", "202301", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	_, err = os.Stat(filepath.Join(scratchDir, "personal_information", "personal_information.json"))
	assert.NoError(t, err)
}

func TestExtractor_UniqueScratchDirs(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "export.zip")
	writeZip(t, archivePath, map[string]string{"a.txt": "a"})

	extractor := NewExtractor(afero.NewOsFs(), filepath.Join(tmpDir, "scratch"), 0)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		dir, err := extractor.Extract(archivePath)
		require.NoError(t, err)
		assert.False(t, seen[dir], "scratch directory reused: %s", dir)
		seen[dir] = true
	}
}

func TestExtractor_CorruptArchive(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "broken.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("definitely not a zip"), 0644))

	extractor := NewExtractor(afero.NewOsFs(), filepath.Join(tmpDir, "scratch"), 0)

	scratchDir, err := extractor.Extract(archivePath)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, zip.ErrFormat.Error(), err.Error())

	// The scratch dir was created before the archive was read and is handed back for cleanup
	assert.NotEmpty(t, scratchDir)
	_, statErr := os.Stat(scratchDir)
	assert.NoError(t, statErr)
}

func TestExtractor_MissingArchive(t *testing.T) {
	tmpDir := t.TempDir()
	extractor := NewExtractor(afero.NewOsFs(), filepath.Join(tmpDir, "scratch"), 0)

	_, err := extractor.Extract(filepath.Join(tmpDir, "nope.zip"))

	var extractionErr *ExtractionError
	assert.True(t, errors.As(err, &extractionErr))
}

func TestExtractor_RejectsPathTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "evil.zip")
	writeZip(t, archivePath, map[string]string{"../../escaped.txt": "gotcha"})

	extractor := NewExtractor(afero.NewOsFs(), filepath.Join(tmpDir, "scratch"), 0)

	_, err := extractor.Extract(archivePath)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Contains(t, err.Error(), "illegal file path")
	_, statErr := os.Stat(filepath.Join(tmpDir, "escaped.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractor_SizeLimit(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "big.zip")
	writeZip(t, archivePath, map[string]string{
		"one.bin": strings.Repeat("x", 64),
		"two.bin": strings.Repeat("y", 64),
	})

	extractor := NewExtractor(afero.NewOsFs(), filepath.Join(tmpDir, "scratch"), 100)

	_, err := extractor.Extract(archivePath)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.ErrorIs(t, err, errArchiveTooLarge)
}

func TestSafeJoin(t *testing.T) {
	root := filepath.Join("tmp", "scratch")

	dest, err := safeJoin(root, "a/b/c.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b", "c.json"), dest)

	_, err = safeJoin(root, "../outside.json")
	assert.Error(t, err)

	_, err = safeJoin(root, `..\outside.json`)
	assert.Error(t, err)

	_, err = safeJoin(root, "/etc/passwd")
	assert.Error(t, err)
}
