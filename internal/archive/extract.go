// Package archive unpacks Instagram data exports into a scratch directory and
// locates the export files inside it.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// ScratchPrefix starts the name of every per-import scratch directory.
	ScratchPrefix = "import-"

	// DefaultMaxExtractedBytes caps the total uncompressed size of one archive.
	DefaultMaxExtractedBytes int64 = 4 << 30
)

var errArchiveTooLarge = errors.New("archive exceeds the maximum extracted size")

// Extractor decompresses archives into uniquely named scratch directories
// under a common root.
type Extractor struct {
	fs          afero.Fs
	scratchRoot string
	maxBytes    int64

	liveMu sync.Mutex
	live   map[string]struct{} // scratch dirs handed out and not yet released
}

// NewExtractor creates an Extractor placing scratch directories under scratchRoot.
// A non-positive maxBytes selects DefaultMaxExtractedBytes.
func NewExtractor(fs afero.Fs, scratchRoot string, maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxExtractedBytes
	}
	return &Extractor{
		fs:          fs,
		scratchRoot: scratchRoot,
		maxBytes:    maxBytes,
		live:        make(map[string]struct{}),
	}
}

// ScratchRoot returns the directory holding all scratch directories.
func (e *Extractor) ScratchRoot() string {
	return e.scratchRoot
}

// Extract unpacks the archive at archivePath into a fresh scratch directory.
//
// When the returned scratchDir is non-empty the directory exists and the
// caller owns its removal, including when err is non-nil. RemoveStale leaves
// the directory alone until the caller hands it back with Release.
func (e *Extractor) Extract(archivePath string) (scratchDir string, err error) {
	if err := e.fs.MkdirAll(e.scratchRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create scratch root: %w", err)
	}

	prefix := ScratchPrefix + strconv.FormatInt(time.Now().UnixNano(), 10) + "-"
	scratchDir, err = afero.TempDir(e.fs, e.scratchRoot, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	e.track(scratchDir)

	zipReader, closeArchive, err := e.openZip(archivePath)
	if err != nil {
		return scratchDir, &ExtractionError{Archive: archivePath, Err: err}
	}
	defer closeArchive()

	var written int64
	for _, file := range zipReader.File {
		destPath, err := safeJoin(scratchDir, file.Name)
		if err != nil {
			return scratchDir, &ExtractionError{Archive: archivePath, Err: err}
		}

		if file.FileInfo().IsDir() {
			if err := e.fs.MkdirAll(destPath, 0755); err != nil {
				return scratchDir, fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := e.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return scratchDir, fmt.Errorf("failed to create directory: %w", err)
		}

		n, err := e.extractZipFile(file, destPath, e.maxBytes-written)
		written += n
		if err != nil {
			return scratchDir, &ExtractionError{
				Archive: archivePath,
				Err:     fmt.Errorf("failed to extract file %s: %w", file.Name, err),
			}
		}
	}

	return scratchDir, nil
}

// Release marks a scratch directory returned by Extract as no longer in use.
func (e *Extractor) Release(scratchDir string) {
	e.liveMu.Lock()
	delete(e.live, filepath.Base(scratchDir))
	e.liveMu.Unlock()
}

func (e *Extractor) track(scratchDir string) {
	e.liveMu.Lock()
	e.live[filepath.Base(scratchDir)] = struct{}{}
	e.liveMu.Unlock()
}

func (e *Extractor) inUse(name string) bool {
	e.liveMu.Lock()
	defer e.liveMu.Unlock()
	_, ok := e.live[name]
	return ok
}

func (e *Extractor) openZip(archivePath string) (*zip.Reader, func() error, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f.Close, nil
}

// extractZipFile writes one archive entry to destPath, refusing to write more
// than budget bytes.
func (e *Extractor) extractZipFile(file *zip.File, destPath string, budget int64) (int64, error) {
	rc, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	outFile, err := e.fs.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer outFile.Close()

	n, err := io.Copy(outFile, io.LimitReader(rc, budget+1))
	if err != nil {
		return n, err
	}
	if n > budget {
		return n, errArchiveTooLarge
	}
	return n, nil
}

// safeJoin resolves an archive entry name under root, rejecting names that
// would escape it.
func safeJoin(root, name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	dest := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return dest, nil
}
