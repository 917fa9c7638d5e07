package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/companion/internal/tasks"
)

// Enqueuer adds a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// MaintenanceScheduler periodically enqueues the scratch cleanup and media
// pruning tasks.
type MaintenanceScheduler struct {
	queue            Enqueuer
	schedule         string
	scratchRetention time.Duration

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMaintenanceScheduler creates a new scheduler instance
func NewMaintenanceScheduler(queue Enqueuer, schedule string, scratchRetention time.Duration) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		queue:            queue,
		schedule:         schedule,
		scratchRetention: scratchRetention,
		cron:             cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler. It stops again when ctx is done.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("invalid maintenance schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Maintenance scheduler: started with schedule '%s'. Next run: %v", s.schedule, s.nextRunLocked())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Printf("Maintenance scheduler: stopped")
}

// RunNow enqueues one round of maintenance immediately.
func (s *MaintenanceScheduler) RunNow() {
	maintenance := []backlite.Task{
		tasks.CleanupScratchTask{OlderThanMinutes: int(s.scratchRetention / time.Minute)},
		tasks.PruneMediaTask{},
	}
	for _, task := range maintenance {
		id, err := s.queue.Enqueue(task)
		if err != nil {
			log.Printf("Maintenance scheduler: failed to enqueue %s: %v", task.Config().Name, err)
			continue
		}
		log.Printf("Maintenance scheduler: enqueued %s (%s)", task.Config().Name, id)
	}
}

// IsRunning returns whether the scheduler is active
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next maintenance round will occur
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.nextRunLocked()
	return &next
}

func (s *MaintenanceScheduler) nextRunLocked() time.Time {
	return s.cron.Entry(s.entryID).Next
}
