package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// UploadPrefix starts the name of archives spooled into the scratch root
// while they wait for a background import.
const UploadPrefix = "upload-"

// RemoveStale deletes scratch directories and spooled uploads under the
// scratch root that were last modified before cutoff. These are left behind
// only when a process dies mid-import. Directories this Extractor handed out
// and that are not yet released are skipped whatever their age. Returns the
// number of entries removed.
func (e *Extractor) RemoveStale(cutoff time.Time) (int, error) {
	entries, err := afero.ReadDir(e.fs, e.scratchRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read scratch root: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, ScratchPrefix) && !strings.HasPrefix(name, UploadPrefix) {
			continue
		}
		if entry.ModTime().After(cutoff) || e.inUse(name) {
			continue
		}
		if err := e.fs.RemoveAll(filepath.Join(e.scratchRoot, name)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
