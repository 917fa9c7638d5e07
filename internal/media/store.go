// Package media manages the durable directory that imported images and
// videos are migrated into.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/utils"
)

// CopyError reports a media file that could not be migrated.
type CopyError struct {
	Source string
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy media %s: %v", e.Source, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Store copies media files into a durable directory under collision-free names.
// It is safe for concurrent use.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a media store rooted at dir. The directory is created on
// first copy.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: filepath.Clean(dir)}
}

// Dir returns the media directory path.
func (s *Store) Dir() string {
	return s.dir
}

// CopyProfilePicture migrates a profile picture. The name embeds the username
// and import time so repeated imports of one account never collide.
func (s *Store) CopyProfilePicture(src, username string, importedAt time.Time) (string, error) {
	name := fmt.Sprintf("profile_%s_%d%s",
		utils.SanitizeFilename(username),
		importedAt.UnixMilli(),
		strings.ToLower(filepath.Ext(utils.MediaBaseName(src))),
	)
	return s.copy(src, name)
}

// CopyPostMedia migrates one post media file under a generated name made of
// the current time, a random token and the original file name.
func (s *Store) CopyPostMedia(src string) (string, error) {
	name := strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + token() + "_" + utils.MediaBaseName(src)
	return s.copy(src, name)
}

// Contains reports whether path lies inside the media directory.
func (s *Store) Contains(path string) bool {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Prune removes files in the media directory that are not listed in keep and
// were last modified before cutoff. A zero cutoff ignores file age. Returns
// the number of files removed.
func (s *Store) Prune(keep map[string]bool, cutoff time.Time) (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read media dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if keep[path] || (!cutoff.IsZero() && entry.ModTime().After(cutoff)) {
			continue
		}
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

const tmpPrefix = ".media_tmp_"

// copy writes src into the media dir under name, going through a temp file so
// a reader never observes a partial file.
func (s *Store) copy(src, name string) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", &CopyError{Source: src, Err: fmt.Errorf("create media dir: %w", err)}
	}

	in, err := s.fs.Open(src)
	if err != nil {
		return "", &CopyError{Source: src, Err: err}
	}
	defer in.Close()

	if info, err := in.Stat(); err != nil {
		return "", &CopyError{Source: src, Err: err}
	} else if info.IsDir() {
		return "", &CopyError{Source: src, Err: fmt.Errorf("is a directory")}
	}

	tmpFile, err := afero.TempFile(s.fs, s.dir, tmpPrefix)
	if err != nil {
		return "", &CopyError{Source: src, Err: err}
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		s.fs.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmpFile, in); err != nil {
		return "", &CopyError{Source: src, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return "", &CopyError{Source: src, Err: err}
	}

	dest := filepath.Join(s.dir, name)
	if err := s.fs.Rename(tmpPath, dest); err != nil {
		return "", &CopyError{Source: src, Err: err}
	}

	return dest, nil
}

func token() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
