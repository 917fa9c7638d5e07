package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/companion/internal/entities"
)

const defaultMediaGraceMinutes = 60

// ProfileLister lists every stored profile.
type ProfileLister interface {
	Load() ([]entities.Profile, error)
}

// MediaPruner deletes media files that are not in keep.
type MediaPruner interface {
	Prune(keep map[string]bool, cutoff time.Time) (int, error)
}

// PruneMediaTask deletes media files that no stored profile references, such
// as the media of deleted profiles or of imports that failed to persist.
// Files younger than the grace period are kept so an import in flight never
// loses media it has already copied.
type PruneMediaTask struct {
	GraceMinutes int `json:"grace_minutes"`
}

// Config returns the queue configuration for media pruning tasks.
func (t PruneMediaTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_media",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneMediaProcessor creates a processor function for PruneMediaTask.
func PruneMediaProcessor(profiles ProfileLister, pruner MediaPruner) backlite.QueueProcessor[PruneMediaTask] {
	return func(ctx context.Context, task PruneMediaTask) error {
		if profiles == nil || pruner == nil {
			return fmt.Errorf("media pruning not configured")
		}

		stored, err := profiles.Load()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		keep := make(map[string]bool)
		for i := range stored {
			for _, path := range stored[i].MediaPaths() {
				keep[path] = true
			}
		}

		grace := task.GraceMinutes
		if grace <= 0 {
			grace = defaultMediaGraceMinutes
		}

		removed, err := pruner.Prune(keep, time.Now().Add(-time.Duration(grace)*time.Minute))
		if err != nil {
			return fmt.Errorf("prune media: %w", err)
		}

		log.Printf("[TASK] Pruned %d unreferenced media files (%d referenced by %d profiles)",
			removed, len(keep), len(stored))
		return nil
	}
}

// NewPruneMediaQueue creates a backlite queue for media pruning tasks.
func NewPruneMediaQueue(profiles ProfileLister, pruner MediaPruner) backlite.Queue {
	return backlite.NewQueue(PruneMediaProcessor(profiles, pruner))
}
