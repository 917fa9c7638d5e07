package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/companion/internal/entities"
	"github.com/mrlokans/companion/internal/importers"
)

// This file consolidates the interfaces HTTP controllers depend on.
// Each controller takes only what it needs.

// ArchiveImporter runs one import for the given picker.
type ArchiveImporter interface {
	Import(ctx context.Context, picker importers.Picker) importers.ImportResult
}

// ImportAuditor records import outcomes.
type ImportAuditor interface {
	SaveImport(source, archiveName string, result importers.ImportResult) (string, error)
}

// ProfileStore provides access to stored profiles.
type ProfileStore interface {
	Load() ([]entities.Profile, error)
	GetProfile(id string) (*entities.Profile, error)
	Delete(id string) error
	DeleteAll() (int64, error)
}

// SessionLister provides read access to the import history.
type SessionLister interface {
	List(limit int) ([]entities.ImportSession, error)
	Get(id uint) (*entities.ImportSession, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
