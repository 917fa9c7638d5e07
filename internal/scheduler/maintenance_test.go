package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/companion/internal/tasks"
)

type recordingQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (q *recordingQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "task-id", nil
}

func TestMaintenanceScheduler_RunNow(t *testing.T) {
	queue := &recordingQueue{}
	s := NewMaintenanceScheduler(queue, "30 3 * * *", 90*time.Minute)

	s.RunNow()

	require.Len(t, queue.tasks, 2)
	assert.Equal(t, tasks.CleanupScratchTask{OlderThanMinutes: 90}, queue.tasks[0])
	assert.Equal(t, tasks.PruneMediaTask{}, queue.tasks[1])
}

func TestMaintenanceScheduler_RunNowToleratesQueueErrors(t *testing.T) {
	queue := &recordingQueue{err: errors.New("database is locked")}
	s := NewMaintenanceScheduler(queue, "30 3 * * *", time.Hour)

	assert.NotPanics(t, s.RunNow)
	assert.Empty(t, queue.tasks)
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	s := NewMaintenanceScheduler(&recordingQueue{}, "30 3 * * *", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 30, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestMaintenanceScheduler_InvalidSchedule(t *testing.T) {
	s := NewMaintenanceScheduler(&recordingQueue{}, "whenever", time.Hour)

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}
