package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const defaultScratchRetentionMinutes = 360

// ScratchCleaner removes abandoned scratch directories.
type ScratchCleaner interface {
	RemoveStale(cutoff time.Time) (int, error)
}

// CleanupScratchTask removes scratch directories and spooled uploads older
// than the retention period. Imports clean up after themselves, so only a
// process that died mid-import leaves anything for this task.
type CleanupScratchTask struct {
	OlderThanMinutes int `json:"older_than_minutes"`
}

// Config returns the queue configuration for scratch cleanup tasks.
func (t CleanupScratchTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_scratch",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupScratchProcessor creates a processor function for CleanupScratchTask.
func CleanupScratchProcessor(cleaner ScratchCleaner) backlite.QueueProcessor[CleanupScratchTask] {
	return func(ctx context.Context, task CleanupScratchTask) error {
		if cleaner == nil {
			return fmt.Errorf("scratch cleaner not configured")
		}

		minutes := task.OlderThanMinutes
		if minutes <= 0 {
			minutes = defaultScratchRetentionMinutes
		}

		removed, err := cleaner.RemoveStale(time.Now().Add(-time.Duration(minutes) * time.Minute))
		if err != nil {
			return fmt.Errorf("cleanup scratch: %w", err)
		}

		log.Printf("[TASK] Removed %d abandoned scratch entries older than %d minutes", removed, minutes)
		return nil
	}
}

// NewCleanupScratchQueue creates a backlite queue for scratch cleanup tasks.
func NewCleanupScratchQueue(cleaner ScratchCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupScratchProcessor(cleaner))
}
