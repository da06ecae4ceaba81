package workerpool

import (
	"errors"
	"fmt"
)

// ErrPoolClosed is returned by Submit once Shutdown has begun.
var ErrPoolClosed = errors.New("worker pool is shut down")

// TaskExecutionError reports a task that returned an error or panicked. It
// is logged and counted; it never stops the worker that ran the task.
type TaskExecutionError struct {
	TaskID   string
	WorkerID int
	Panicked bool
	Err      error
}

func (e *TaskExecutionError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("task %s panicked on worker %d: %v", e.TaskID, e.WorkerID, e.Err)
	}
	return fmt.Sprintf("task %s failed on worker %d: %v", e.TaskID, e.WorkerID, e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}

// IsTaskExecutionError checks if an error is or wraps a TaskExecutionError.
func IsTaskExecutionError(err error) bool {
	var target *TaskExecutionError
	return errors.As(err, &target)
}
