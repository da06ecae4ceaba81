package app

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"dashtrack/internal/config"
	"dashtrack/internal/containerizer"
)

// fakeRuntime tracks containers in memory. Every container publishes the
// port of the test's miniredis instance.
type fakeRuntime struct {
	mu      sync.Mutex
	port    string
	running map[string]string // name -> ID
	stopped map[string]string
	starts  int
	removes int
}

func newFakeRuntime(port string) *fakeRuntime {
	return &fakeRuntime{
		port:    port,
		running: make(map[string]string),
		stopped: make(map[string]string),
	}
}

func (f *fakeRuntime) PullImage(ctx context.Context, image string) error {
	return nil
}

func (f *fakeRuntime) StartContainer(ctx context.Context, cfg containerizer.ContainerConfig) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	id := "0123456789abcdef-" + cfg.Name
	f.running[cfg.Name] = id
	return id, nil
}

func (f *fakeRuntime) StopContainer(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, id := range f.running {
		if id == containerID {
			delete(f.running, name)
			f.stopped[name] = id
		}
	}
	return nil
}

func (f *fakeRuntime) InspectContainer(ctx context.Context, nameOrID string) (containerizer.ContainerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.running[nameOrID]; ok {
		return containerizer.ContainerStatus{ID: id, Exists: true, Running: true}, nil
	}
	if id, ok := f.stopped[nameOrID]; ok {
		return containerizer.ContainerStatus{ID: id, Exists: true}, nil
	}
	return containerizer.ContainerStatus{}, nil
}

func (f *fakeRuntime) GetContainerPort(ctx context.Context, containerID string, containerPort string) (string, error) {
	return f.port, nil
}

func (f *fakeRuntime) RemoveContainer(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	for name, id := range f.running {
		if id == containerID {
			delete(f.running, name)
		}
	}
	for name, id := range f.stopped {
		if id == containerID {
			delete(f.stopped, name)
		}
	}
	return nil
}

func (f *fakeRuntime) counts() (running, starts, removes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.running), f.starts, f.removes
}

// testConfig returns a configuration pointing the store at mr with every log
// file inside a temporary directory.
func testConfig(t *testing.T, mr *miniredis.Miniredis) *config.DashtrackConfig {
	t.Helper()
	dir := t.TempDir()

	host, _, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	dc := config.GetDefaultConfig()
	dc.Store.Host = host
	dc.Store.Port = 0
	dc.Store.DataDir = ""
	dc.Store.Password = "test"
	dc.Store.HealthTimeout = 500 * time.Millisecond
	dc.Store.DialTimeout = time.Second
	dc.Workers.LogFile = filepath.Join(dir, "dashtrack-threaded.log")
	dc.Logging.File = filepath.Join(dir, "dashtrack.log")
	return &dc
}

// newTestApplication wires an application to a miniredis instance that
// requires the password "test".
func newTestApplication(t *testing.T) (*Application, *fakeRuntime, *miniredis.Miniredis, *bytes.Buffer) {
	t.Helper()

	mr := miniredis.RunT(t)
	mr.RequireAuth("test")

	runtime := newFakeRuntime(mr.Port())
	out := &bytes.Buffer{}

	application, err := NewApplication(&Config{
		DashtrackConfig: testConfig(t, mr),
		Runtime:         runtime,
		Output:          out,
		Silent:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	return application, runtime, mr, out
}
