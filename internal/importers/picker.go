package importers

import (
	"context"
	"errors"
	"path/filepath"
)

// ErrCancelled is returned by a Picker when no archive was chosen.
var ErrCancelled = errors.New("file selection canceled")

// Selection is the archive chosen for one import.
type Selection struct {
	Name string // display name, usually the original file name
	Path string
}

// Picker obtains the archive to import. Returning ErrCancelled ends the
// import without touching the file system.
type Picker interface {
	Pick(ctx context.Context) (Selection, error)
}

// FilePicker selects a path known in advance, such as an uploaded file or a
// command line argument. An empty Path counts as a cancelled selection.
type FilePicker struct {
	Path string
	Name string
}

func (p FilePicker) Pick(ctx context.Context) (Selection, error) {
	if err := ctx.Err(); err != nil {
		return Selection{}, err
	}
	if p.Path == "" {
		return Selection{}, ErrCancelled
	}
	name := p.Name
	if name == "" {
		name = filepath.Base(p.Path)
	}
	return Selection{Name: name, Path: p.Path}, nil
}

var _ Picker = FilePicker{}
