package tasks

import "time"

// Config describes the background queue: where it keeps its state and how
// many imports or maintenance jobs run at once.
type Config struct {
	DBPath          string        // SQLite file holding queued tasks, separate from the profile store
	Workers         int           // Concurrent workers; imports are I/O bound so a few suffice
	ReleaseAfter    time.Duration // A claimed task not finished by then goes back to the queue
	CleanupInterval time.Duration // How often finished tasks past their retention are purged
}

const (
	defaultWorkers         = 2
	defaultReleaseAfter    = 90 * time.Minute
	defaultCleanupInterval = time.Hour
)

// DefaultConfig returns the queue settings used when nothing is configured.
// ReleaseAfter outlasts the import task timeout so a slow import is never
// handed to a second worker.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:          dbPath,
		Workers:         defaultWorkers,
		ReleaseAfter:    defaultReleaseAfter,
		CleanupInterval: defaultCleanupInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = defaultReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	return c
}
