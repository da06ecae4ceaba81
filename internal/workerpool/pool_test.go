package workerpool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashtrack/pkg/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestPool[R any](t *testing.T, cfg Config[R]) (*Pool[R], *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	if cfg.Logger == nil && cfg.LogFile == "" {
		cfg.Logger = logging.New(subsystem, buf, logging.LevelDebug)
	}
	pool, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return pool, buf
}

func TestPool_FailingTaskIsIsolated(t *testing.T) {
	pool, logs := newTestPool(t, Config[struct{}]{Workers: 3})

	for i := 1; i <= 10; i++ {
		i := i
		require.NoError(t, pool.Submit(Task[struct{}]{
			ID: fmt.Sprintf("task-%d", i),
			Run: func(ctx context.Context, _ struct{}) error {
				if i == 4 {
					return errors.New("restaurant page changed")
				}
				return nil
			},
		}))
	}

	require.Eventually(t, func() bool {
		s := pool.Stats()
		return s.Succeeded+s.Failed == 10
	}, 5*time.Second, 5*time.Millisecond)

	stats := pool.Stats()
	assert.Equal(t, int64(9), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)

	// The pool still accepts work
	ran := make(chan struct{})
	require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
		close(ran)
		return nil
	}}))
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("task submitted after a failure never ran")
	}

	require.NoError(t, pool.Shutdown(context.Background(), true))

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "Task task-4 failed"))
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "restaurant page changed")
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	pool, _ := newTestPool(t, Config[struct{}]{Workers: workers})

	var active, peak atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return nil
		}}))
	}

	require.NoError(t, pool.Shutdown(context.Background(), true))

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Equal(t, int64(20), pool.Stats().Succeeded)
}

func TestPool_WorkersCappedAtMax(t *testing.T) {
	pool, logs := newTestPool(t, Config[struct{}]{Workers: 50, MaxWorkers: 4})
	defer pool.Shutdown(context.Background(), true)

	assert.Equal(t, 4, pool.Workers())
	assert.Contains(t, logs.String(), "capping at 4")

	defaulted, _ := newTestPool(t, Config[struct{}]{})
	defer defaulted.Shutdown(context.Background(), true)
	assert.Equal(t, DefaultMaxWorkers, defaulted.Workers())
}

func TestPool_ShutdownDrain(t *testing.T) {
	pool, _ := newTestPool(t, Config[struct{}]{Workers: 2})

	var completed atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
			time.Sleep(time.Millisecond)
			completed.Add(1)
			return nil
		}}))
	}

	require.NoError(t, pool.Shutdown(context.Background(), true))
	assert.Equal(t, int32(10), completed.Load(), "drain waits for every queued task")

	var lateRan atomic.Bool
	err := pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
		lateRan.Store(true)
		return nil
	}})
	assert.ErrorIs(t, err, ErrPoolClosed)

	// Repeated shutdown is a no-op
	require.NoError(t, pool.Shutdown(context.Background(), true))
	assert.False(t, lateRan.Load())
}

func TestPool_ShutdownDiscard(t *testing.T) {
	pool, logs := newTestPool(t, Config[struct{}]{Workers: 1})

	started := make(chan struct{})
	gate := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, pool.Submit(Task[struct{}]{ID: "in-flight", Run: func(ctx context.Context, _ struct{}) error {
		close(started)
		<-gate
		finished.Store(true)
		return nil
	}}))
	<-started

	var queuedRan atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
			queuedRan.Add(1)
			return nil
		}}))
	}

	shutdownDone := make(chan error, 1)
	go func() {
		shutdownDone <- pool.Shutdown(context.Background(), false)
	}()

	require.Eventually(t, func() bool {
		return pool.Stats().Discarded == 5
	}, 5*time.Second, time.Millisecond)

	close(gate)
	require.NoError(t, <-shutdownDone)

	assert.True(t, finished.Load(), "in-flight task runs to completion")
	assert.Zero(t, queuedRan.Load())
	assert.Contains(t, logs.String(), "Discarding 5 queued task(s)")
}

func TestPool_ShutdownContextExpires(t *testing.T) {
	pool, _ := newTestPool(t, Config[struct{}]{Workers: 1})

	gate := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
		close(started)
		<-gate
		return nil
	}}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx, true), context.DeadlineExceeded)

	close(gate)
	require.NoError(t, pool.Shutdown(context.Background(), true))
}

func TestPool_PanicIsRecovered(t *testing.T) {
	pool, logs := newTestPool(t, Config[struct{}]{Workers: 1})

	require.NoError(t, pool.Submit(Task[struct{}]{ID: "explodes", Run: func(ctx context.Context, _ struct{}) error {
		panic("nil builder")
	}}))
	var after atomic.Bool
	require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
		after.Store(true)
		return nil
	}}))

	require.NoError(t, pool.Shutdown(context.Background(), true))

	assert.True(t, after.Load(), "the worker survives a panicking task")
	assert.Equal(t, int64(1), pool.Stats().Failed)
	assert.Contains(t, logs.String(), "task explodes panicked on worker 0: nil builder")
}

func TestPool_DefaultTaskID(t *testing.T) {
	pool, logs := newTestPool(t, Config[struct{}]{Workers: 1})

	require.NoError(t, pool.Submit(Task[struct{}]{Run: func(ctx context.Context, _ struct{}) error {
		return errors.New("boom")
	}}))
	require.NoError(t, pool.Shutdown(context.Background(), true))

	uuidPattern := regexp.MustCompile(`Task [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12} failed`)
	assert.Regexp(t, uuidPattern, logs.String())

	assert.Error(t, pool.Submit(Task[struct{}]{}))
}

type workerResource struct {
	workerID int
	released bool
}

func TestPool_PerWorkerResources(t *testing.T) {
	var mu sync.Mutex
	acquired := map[int]*workerResource{}

	pool, _ := newTestPool(t, Config[*workerResource]{
		Workers: 3,
		Acquire: func(ctx context.Context, workerID int) (*workerResource, error) {
			mu.Lock()
			defer mu.Unlock()
			res := &workerResource{workerID: workerID}
			acquired[workerID] = res
			return res, nil
		},
		Release: func(workerID int, res *workerResource) {
			mu.Lock()
			defer mu.Unlock()
			res.released = true
		},
	})

	var seen sync.Map
	for i := 0; i < 30; i++ {
		require.NoError(t, pool.Submit(Task[*workerResource]{Run: func(ctx context.Context, res *workerResource) error {
			seen.Store(res, true)
			return nil
		}}))
	}
	require.NoError(t, pool.Shutdown(context.Background(), true))

	seen.Range(func(key, _ any) bool {
		res := key.(*workerResource)
		assert.Same(t, acquired[res.workerID], res, "tasks only see resources acquired for a worker")
		return true
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, acquired, 3)
	for id, res := range acquired {
		assert.True(t, res.released, "worker %d resource released", id)
	}
}

func TestPool_AcquireFailure(t *testing.T) {
	var released []int

	_, err := New(context.Background(), Config[int]{
		Workers: 3,
		Logger:  logging.New(subsystem, &syncBuffer{}, logging.LevelInfo),
		Acquire: func(ctx context.Context, workerID int) (int, error) {
			if workerID == 2 {
				return 0, errors.New("connection refused")
			}
			return workerID, nil
		},
		Release: func(workerID int, res int) {
			released = append(released, res)
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker 2")
	assert.Equal(t, []int{0, 1}, released)
}

func TestPool_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dashtrack-threaded.log")

	pool, err := New(context.Background(), Config[struct{}]{
		Workers:  2,
		LogFile:  path,
		LogLevel: logging.LevelInfo,
	})
	require.NoError(t, err)

	require.NoError(t, pool.Submit(Task[struct{}]{ID: "bad", Run: func(ctx context.Context, _ struct{}) error {
		return errors.New("boom")
	}}))
	require.NoError(t, pool.Shutdown(context.Background(), true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "subsystem=WorkerPool")
	assert.Contains(t, out, "Started worker pool with 2 worker(s)")
	assert.Contains(t, out, "Task bad failed")
	assert.Contains(t, out, "Worker pool stopped: 1 submitted, 0 succeeded, 1 failed, 0 discarded")
}

func TestTaskExecutionError(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("wrapped: %w", &TaskExecutionError{TaskID: "t1", WorkerID: 2, Err: cause})

	assert.True(t, IsTaskExecutionError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "task t1 failed on worker 2: timeout")
	assert.False(t, IsTaskExecutionError(cause))
}
