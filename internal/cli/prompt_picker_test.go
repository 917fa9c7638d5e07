package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/companion/internal/importers"
)

func newPromptFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/downloads/export.zip", []byte("zip"), 0644))
	require.NoError(t, fs.MkdirAll("/downloads/folder.zip", 0755))
	return fs
}

func TestPromptPicker_AcceptsZip(t *testing.T) {
	var out bytes.Buffer
	picker := PromptPicker{In: strings.NewReader("/downloads/export.zip\n"), Out: &out, Fs: newPromptFs(t)}

	sel, err := picker.Pick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/downloads/export.zip", sel.Path)
	assert.Equal(t, "export.zip", sel.Name)
	assert.Contains(t, out.String(), "Path to Instagram archive")
}

func TestPromptPicker_StripsQuotes(t *testing.T) {
	picker := PromptPicker{In: strings.NewReader("  '/downloads/export.zip'  \n"), Out: &bytes.Buffer{}, Fs: newPromptFs(t)}

	sel, err := picker.Pick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/downloads/export.zip", sel.Path)
}

func TestPromptPicker_BlankLineCancels(t *testing.T) {
	picker := PromptPicker{In: strings.NewReader("\n"), Out: &bytes.Buffer{}, Fs: newPromptFs(t)}

	_, err := picker.Pick(context.Background())

	assert.ErrorIs(t, err, importers.ErrCancelled)
}

func TestPromptPicker_EOFCancels(t *testing.T) {
	picker := PromptPicker{In: strings.NewReader(""), Out: &bytes.Buffer{}, Fs: newPromptFs(t)}

	_, err := picker.Pick(context.Background())

	assert.ErrorIs(t, err, importers.ErrCancelled)
}

func TestPromptPicker_RetriesInvalidInput(t *testing.T) {
	var out bytes.Buffer
	input := "/downloads/notes.txt\n/downloads/missing.zip\n/downloads/export.zip\n"
	picker := PromptPicker{In: strings.NewReader(input), Out: &out, Fs: newPromptFs(t)}

	sel, err := picker.Pick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/downloads/export.zip", sel.Path)
	assert.Contains(t, out.String(), "is not a .zip archive")
	assert.Contains(t, out.String(), "Cannot open /downloads/missing.zip")
}

func TestPromptPicker_GivesUpAfterMaxAttempts(t *testing.T) {
	var out bytes.Buffer
	input := "/downloads/folder.zip\n/downloads/folder.zip\n/downloads/export.zip\n"
	picker := PromptPicker{In: strings.NewReader(input), Out: &out, Fs: newPromptFs(t), MaxAttempts: 2}

	_, err := picker.Pick(context.Background())

	assert.ErrorIs(t, err, importers.ErrCancelled)
	assert.Contains(t, out.String(), "is a directory")
	assert.Contains(t, out.String(), "Too many invalid paths")
}

func TestPromptPicker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	picker := PromptPicker{In: strings.NewReader("/downloads/export.zip\n"), Out: &bytes.Buffer{}, Fs: newPromptFs(t)}

	_, err := picker.Pick(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
