package memory

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("task queue full")

// TaskHandler executes one task by name.
type TaskHandler func(ctx context.Context, task string) error

// TaskQueue is a buffered in-process queue drained by a single worker.
type TaskQueue struct {
	tasks chan string
}

func NewTaskQueue(buffer int) *TaskQueue {
	if buffer <= 0 {
		buffer = 16
	}
	return &TaskQueue{tasks: make(chan string, buffer)}
}

// Enqueue never blocks; a full queue drops the task with ErrQueueFull.
func (q *TaskQueue) Enqueue(ctx context.Context, task string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run feeds queued tasks to handler until ctx is done.
func (q *TaskQueue) Run(ctx context.Context, handler TaskHandler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-q.tasks:
			if err := handler(ctx, task); err != nil {
				log.WithField("task", task).WithError(err).Error("task failed")
			}
		}
	}
}
