package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/importers"
)

// ArchiveImporter runs one import for the given picker.
type ArchiveImporter interface {
	Import(ctx context.Context, picker importers.Picker) importers.ImportResult
}

// ImportAuditor records the outcome of background imports.
type ImportAuditor interface {
	SaveImport(source, archiveName string, result importers.ImportResult) (string, error)
}

// ImportArchiveTask imports an archive that was spooled to disk by the HTTP
// upload handler. The spooled file is removed once the import finishes.
type ImportArchiveTask struct {
	ArchivePath string `json:"archive_path"`
	ArchiveName string `json:"archive_name"`
}

// Config returns the queue configuration for archive imports. Imports are
// not retried: a broken archive stays broken.
func (t ImportArchiveTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_archive",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Hour,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportArchiveProcessor creates a processor function for ImportArchiveTask.
func ImportArchiveProcessor(fs afero.Fs, importer ArchiveImporter, auditor ImportAuditor) backlite.QueueProcessor[ImportArchiveTask] {
	return func(ctx context.Context, task ImportArchiveTask) error {
		if importer == nil {
			return fmt.Errorf("archive importer not configured")
		}
		defer func() {
			if err := fs.Remove(task.ArchivePath); err != nil && !os.IsNotExist(err) {
				log.Printf("WARNING: Failed to remove spooled archive %s: %v", task.ArchivePath, err)
			}
		}()

		result := importer.Import(ctx, importers.FilePicker{Path: task.ArchivePath, Name: task.ArchiveName})

		if auditor != nil {
			if _, err := auditor.SaveImport("task", task.ArchiveName, result); err != nil {
				log.Printf("WARNING: Failed to save import audit: %v", err)
			}
		}

		if !result.Success {
			return fmt.Errorf("import %s: %s", task.ArchiveName, result.Error)
		}

		log.Printf("[TASK] Imported %s as %s (%d posts, %d issues)",
			task.ArchiveName, result.Profile.ID, len(result.Profile.Posts), result.Issues)
		return nil
	}
}

// NewImportArchiveQueue creates a backlite queue for archive imports.
func NewImportArchiveQueue(fs afero.Fs, importer ArchiveImporter, auditor ImportAuditor) backlite.Queue {
	return backlite.NewQueue(ImportArchiveProcessor(fs, importer, auditor))
}
