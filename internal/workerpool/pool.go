package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dashtrack/pkg/logging"
)

const subsystem = "WorkerPool"

// DefaultMaxWorkers caps the pool size when Config.MaxWorkers is not set.
const DefaultMaxWorkers = 10

// Task is a unit of work. Run receives the resource owned by the worker that
// claimed the task.
type Task[R any] struct {
	// ID correlates log records. A UUID is assigned when empty.
	ID  string
	Run func(ctx context.Context, res R) error
}

// Config configures a Pool.
type Config[R any] struct {
	// Workers is the number of workers. Zero means MaxWorkers.
	Workers int

	// MaxWorkers caps Workers. Zero means DefaultMaxWorkers.
	MaxWorkers int

	// LogFile, when set, receives the pool's records. The pool opens it on
	// New and closes it on Shutdown.
	LogFile  string
	LogLevel logging.LogLevel

	// Logger is used when LogFile is empty. The pool does not close it.
	Logger *logging.Logger

	// Acquire creates the private resource of one worker, for example a
	// store connection. It is called once per worker before any task runs.
	Acquire func(ctx context.Context, workerID int) (R, error)

	// Release disposes of a worker resource after the worker has exited.
	Release func(workerID int, res R)
}

// Stats are cumulative task counters.
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
	Discarded int64
}

// Pool runs tasks on a fixed set of workers pulling from an unbounded FIFO
// queue. A failing task is logged and counted and the worker moves on.
type Pool[R any] struct {
	logger    *logging.Logger
	ownLogger bool
	release   func(workerID int, res R)
	resources []R
	workers   int

	group *errgroup.Group
	ctx   context.Context

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task[R]
	closed bool

	shutdownOnce sync.Once
	done         chan struct{}

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	discarded atomic.Int64
}

// New acquires one resource per worker and starts the workers. If any
// acquisition fails, the resources acquired so far are released and the
// error is returned.
func New[R any](ctx context.Context, cfg Config[R]) (*Pool[R], error) {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = maxWorkers
	}

	logger := cfg.Logger
	ownLogger := false
	if cfg.LogFile != "" {
		fileLogger, err := logging.NewFileLogger(subsystem, cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to open worker pool log: %w", err)
		}
		logger = fileLogger
		ownLogger = true
	}
	if logger == nil {
		logger = logging.For(subsystem)
	}

	if workers > maxWorkers {
		logger.Warn("Requested %d workers, capping at %d", workers, maxWorkers)
		workers = maxWorkers
	}

	p := &Pool[R]{
		logger:    logger,
		ownLogger: ownLogger,
		release:   cfg.Release,
		resources: make([]R, 0, workers),
		workers:   workers,
		done:      make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	if cfg.Acquire != nil {
		for id := 0; id < workers; id++ {
			res, err := cfg.Acquire(ctx, id)
			if err != nil {
				p.releaseResources()
				p.closeLogger()
				return nil, fmt.Errorf("failed to acquire resources for worker %d: %w", id, err)
			}
			p.resources = append(p.resources, res)
		}
	} else {
		var zero R
		for id := 0; id < workers; id++ {
			p.resources = append(p.resources, zero)
		}
	}

	p.group, p.ctx = errgroup.WithContext(ctx)
	for id := 0; id < workers; id++ {
		id, res := id, p.resources[id]
		p.group.Go(func() error {
			return p.worker(id, res)
		})
	}

	p.logger.Info("Started worker pool with %d worker(s)", workers)
	return p, nil
}

// Workers returns the fixed number of workers.
func (p *Pool[R]) Workers() int {
	return p.workers
}

// Submit enqueues a task without blocking. It is safe for concurrent use and
// returns ErrPoolClosed once Shutdown has begun.
func (p *Pool[R]) Submit(task Task[R]) error {
	if task.Run == nil {
		return errors.New("task has no Run function")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.queue = append(p.queue, task)
	p.submitted.Add(1)
	p.cond.Signal()
	return nil
}

// next blocks until a task is available. It returns false once the pool is
// closed and the queue is empty.
func (p *Pool[R]) next() (Task[R], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return Task[R]{}, false
	}

	task := p.queue[0]
	p.queue[0] = Task[R]{}
	p.queue = p.queue[1:]
	return task, true
}

func (p *Pool[R]) worker(id int, res R) error {
	logger := p.logger.With("workerID", id)
	logger.Debug("Worker started")

	for {
		task, ok := p.next()
		if !ok {
			logger.Debug("Worker finished")
			return nil
		}

		if err := p.runTask(id, res, task); err != nil {
			p.failed.Add(1)
			logger.Error(err, "Task %s failed", task.ID)
			continue
		}
		p.succeeded.Add(1)
		logger.Debug("Task %s completed", task.ID)
	}
}

func (p *Pool[R]) runTask(workerID int, res R, task Task[R]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskExecutionError{
				TaskID:   task.ID,
				WorkerID: workerID,
				Panicked: true,
				Err:      fmt.Errorf("%v", r),
			}
		}
	}()

	if runErr := task.Run(p.ctx, res); runErr != nil {
		return &TaskExecutionError{TaskID: task.ID, WorkerID: workerID, Err: runErr}
	}
	return nil
}

// Shutdown stops accepting tasks and waits for the workers to exit. With
// drain set, every queued task runs first; otherwise queued tasks are
// discarded and only in-flight tasks are waited for. Worker resources are
// released afterwards. Repeated calls wait for the same shutdown. The
// returned error is non-nil only if ctx ends before the workers exit.
func (p *Pool[R]) Shutdown(ctx context.Context, drain bool) error {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		if !drain {
			if n := len(p.queue); n > 0 {
				p.discarded.Add(int64(n))
				p.logger.Warn("Discarding %d queued task(s)", n)
			}
			p.queue = nil
		}
		p.cond.Broadcast()
		p.mu.Unlock()

		go func() {
			_ = p.group.Wait()
			p.releaseResources()

			stats := p.Stats()
			p.logger.Info("Worker pool stopped: %d submitted, %d succeeded, %d failed, %d discarded",
				stats.Submitted, stats.Succeeded, stats.Failed, stats.Discarded)
			p.closeLogger()
			close(p.done)
		}()
	})

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool[R]) releaseResources() {
	if p.release == nil {
		return
	}
	for id, res := range p.resources {
		p.release(id, res)
	}
	p.resources = nil
}

func (p *Pool[R]) closeLogger() {
	if !p.ownLogger {
		return
	}
	if err := p.logger.Close(); err != nil {
		logging.Warn(subsystem, "Failed to close worker pool log: %v", err)
	}
}

// Stats returns a snapshot of the task counters.
func (p *Pool[R]) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Discarded: p.discarded.Load(),
	}
}
