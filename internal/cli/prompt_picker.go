package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/importers"
)

const defaultPromptAttempts = 3

// PromptPicker asks for the archive path on an interactive terminal. A blank
// answer or end of input cancels the selection.
type PromptPicker struct {
	In          io.Reader
	Out         io.Writer
	Fs          afero.Fs
	MaxAttempts int
}

func (p PromptPicker) Pick(ctx context.Context) (importers.Selection, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultPromptAttempts
	}
	fs := p.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	scanner := bufio.NewScanner(p.In)
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return importers.Selection{}, err
		}

		fmt.Fprint(p.Out, "Path to Instagram archive (.zip), empty to cancel: ")
		if !scanner.Scan() {
			fmt.Fprintln(p.Out)
			return importers.Selection{}, importers.ErrCancelled
		}

		path := cleanPathInput(scanner.Text())
		if path == "" {
			return importers.Selection{}, importers.ErrCancelled
		}

		if !strings.EqualFold(filepath.Ext(path), ".zip") {
			fmt.Fprintf(p.Out, "%s is not a .zip archive\n", path)
			continue
		}
		info, err := fs.Stat(path)
		if err != nil {
			fmt.Fprintf(p.Out, "Cannot open %s: %v\n", path, err)
			continue
		}
		if info.IsDir() {
			fmt.Fprintf(p.Out, "%s is a directory\n", path)
			continue
		}

		return importers.Selection{Name: filepath.Base(path), Path: path}, nil
	}

	fmt.Fprintln(p.Out, "Too many invalid paths")
	return importers.Selection{}, importers.ErrCancelled
}

// cleanPathInput trims whitespace and the quotes terminals add to dragged-in
// paths, and expands a leading ~.
func cleanPathInput(raw string) string {
	path := strings.TrimSpace(raw)
	if len(path) >= 2 && (path[0] == '"' || path[0] == '\'') && path[len(path)-1] == path[0] {
		path = path[1 : len(path)-1]
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
