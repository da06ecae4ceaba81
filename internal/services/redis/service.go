package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"dashtrack/internal/containerizer"
	"dashtrack/internal/services"
	"dashtrack/pkg/logging"
)

const subsystem = "RedisService"

// ContainerPort is the port Redis listens on inside the container.
const ContainerPort = "6379"

// ServiceLabel marks containers managed by dashtrack.
const ServiceLabel = "dashtrack.service"

// DefaultDialTimeout bounds connection attempts and health probes when the
// configuration does not set one.
const DefaultDialTimeout = 5 * time.Second

// Config describes the Redis container and how clients reach it.
type Config struct {
	// Name is the service identity inside the orchestrator
	Name string

	ContainerName string
	Image         string
	Host          string

	// Port is the host port published for Redis. Zero lets the runtime
	// choose a free port.
	Port int

	// DataDir is mounted at /data when set
	DataDir string

	// Username and Password are used for health probes. Password is also
	// enforced on the server with --requirepass.
	Username string
	Password string

	DialTimeout time.Duration
}

// Service runs Redis in a container and hands out go-redis clients.
type Service struct {
	*services.BaseService
	cfg     Config
	runtime containerizer.ContainerRuntime

	// lifecycleMu serializes Start and Stop
	lifecycleMu sync.Mutex
	containerID string
	hostPort    string
}

// NewService creates a Redis service backed by the given container runtime
func NewService(cfg Config, runtime containerizer.ContainerRuntime) (*Service, error) {
	if runtime == nil {
		return nil, errors.New("container runtime is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ContainerName
	}
	if cfg.ContainerName == "" || cfg.Image == "" {
		return nil, fmt.Errorf("redis service %q requires a container name and an image", cfg.Name)
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}

	return &Service{
		BaseService: services.NewBaseService(cfg.Name, services.TypeStore),
		cfg:         cfg,
		runtime:     runtime,
	}, nil
}

// Start launches the Redis container unless one with the configured name is
// already running, in which case that instance is adopted and
// StartResultAlreadyRunning is returned.
func (s *Service) Start(ctx context.Context) (services.StartResult, error) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.GetState().IsActive() {
		logging.Debug(subsystem, "Service %s already started by this process", s.GetName())
		return services.StartResultAlreadyRunning, nil
	}

	s.UpdateState(services.StateStarting, services.HealthUnknown, nil)

	adopted, err := s.attachLocked(ctx)
	if err != nil {
		return s.failStart(err)
	}
	if adopted {
		logging.Info(subsystem, "Found running container %s for service %s", s.cfg.ContainerName, s.GetName())
		s.UpdateState(services.StateAlreadyRunning, services.HealthUnknown, nil)
		return services.StartResultAlreadyRunning, nil
	}

	if err := s.runtime.PullImage(ctx, s.cfg.Image); err != nil {
		return s.failStart(err)
	}

	id, err := s.runtime.StartContainer(ctx, s.containerConfig())
	if err != nil {
		return s.failStart(err)
	}
	if err := s.resolvePort(ctx, id); err != nil {
		// Do not leave an unreachable container behind
		if rmErr := s.runtime.RemoveContainer(context.WithoutCancel(ctx), id); rmErr != nil {
			logging.Warn(subsystem, "Failed to remove container %s after start failure: %v", id, rmErr)
		}
		return s.failStart(err)
	}
	s.containerID = id

	s.UpdateState(services.StateRunning, services.HealthUnknown, nil)
	return services.StartResultStarted, nil
}

func (s *Service) failStart(err error) (services.StartResult, error) {
	wrapped := fmt.Errorf("failed to start service %s: %w", s.GetName(), err)
	s.UpdateState(services.StateFailed, services.HealthUnhealthy, wrapped)
	return services.StartResultStarted, wrapped
}

// Attach looks up the configured container without starting anything. When
// it is running the service adopts it, so CheckHealth, Connect and Stop work
// against it. It reports the container's runtime status.
func (s *Service) Attach(ctx context.Context) (containerizer.ContainerStatus, error) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	status, err := s.runtime.InspectContainer(ctx, s.cfg.ContainerName)
	if err != nil {
		return containerizer.ContainerStatus{}, err
	}
	if !status.Running || s.GetState().IsActive() {
		return status, nil
	}

	if err := s.resolvePort(ctx, status.ID); err != nil {
		return status, err
	}
	s.containerID = status.ID
	s.UpdateState(services.StateAlreadyRunning, services.HealthUnknown, nil)
	return status, nil
}

// attachLocked adopts a running container and clears out a stopped one that
// would otherwise block `run --name`.
func (s *Service) attachLocked(ctx context.Context) (bool, error) {
	status, err := s.runtime.InspectContainer(ctx, s.cfg.ContainerName)
	if err != nil {
		return false, err
	}

	if status.Running {
		// Only an instance that is reachable is adopted, so a failed start
		// never leaves Stop pointed at a container this run did not start.
		if err := s.resolvePort(ctx, status.ID); err != nil {
			return false, err
		}
		s.containerID = status.ID
		return true, nil
	}

	if status.Exists {
		logging.Debug(subsystem, "Removing stopped container %s", s.cfg.ContainerName)
		if err := s.runtime.RemoveContainer(ctx, status.ID); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *Service) containerConfig() containerizer.ContainerConfig {
	port := ContainerPort
	if s.cfg.Port > 0 {
		port = fmt.Sprintf("%d:%s", s.cfg.Port, ContainerPort)
	}

	cfg := containerizer.ContainerConfig{
		Name:    s.cfg.ContainerName,
		Image:   s.cfg.Image,
		Labels:  map[string]string{ServiceLabel: s.GetName()},
		Ports:   []string{port},
		Command: []string{"redis-server"},
	}

	// Persist to the mounted data directory
	if s.cfg.DataDir != "" {
		cfg.Volumes = []string{s.cfg.DataDir + ":/data"}
		cfg.Command = append(cfg.Command, "--appendonly", "yes")
	}
	if s.cfg.Password != "" {
		cfg.Command = append(cfg.Command, "--requirepass", s.cfg.Password)
	}

	return cfg
}

// resolvePort looks up the port container id publishes. A fixed configured
// port is used as a fallback when the runtime cannot report it.
func (s *Service) resolvePort(ctx context.Context, id string) error {
	port, err := s.runtime.GetContainerPort(ctx, id, ContainerPort)
	if err == nil {
		s.hostPort = port
		return nil
	}
	if s.cfg.Port > 0 {
		logging.Debug(subsystem, "Using configured port %d for %s: %v", s.cfg.Port, s.GetName(), err)
		s.hostPort = strconv.Itoa(s.cfg.Port)
		return nil
	}
	return err
}

// Addr returns host:port of the running instance, or an empty string.
func (s *Service) Addr() string {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	return s.addrLocked()
}

func (s *Service) addrLocked() string {
	if s.hostPort == "" {
		return ""
	}
	return net.JoinHostPort(s.cfg.Host, s.hostPort)
}

// CheckHealth sends PING with the configured credentials, bounded by the dial
// timeout.
func (s *Service) CheckHealth(ctx context.Context) (services.HealthStatus, error) {
	client, err := s.newClient(services.Credentials{Username: s.cfg.Username, Password: s.cfg.Password})
	if err != nil {
		s.UpdateHealth(services.HealthUnknown)
		return services.HealthUnknown, err
	}
	defer client.Close()

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(probeCtx).Err(); err != nil {
		s.UpdateHealth(services.HealthUnhealthy)
		return services.HealthUnhealthy, fmt.Errorf("ping %s: %w", s.GetName(), err)
	}

	s.UpdateHealth(services.HealthHealthy)
	return services.HealthHealthy, nil
}

// Connect returns a new go-redis client as a services.Connection.
func (s *Service) Connect(ctx context.Context, creds services.Credentials) (services.Connection, error) {
	return s.Client(ctx, creds)
}

// Client returns a new go-redis client for the running instance after
// verifying it can authenticate. The caller owns the client.
func (s *Service) Client(ctx context.Context, creds services.Credentials) (*goredis.Client, error) {
	client, err := s.newClient(creds)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to %s as %s: %w", s.GetName(), creds, err)
	}
	return client, nil
}

func (s *Service) newClient(creds services.Credentials) (*goredis.Client, error) {
	if !s.GetState().IsActive() {
		return nil, fmt.Errorf("service %s is not running (state %s)", s.GetName(), s.GetState())
	}
	addr := s.Addr()
	if addr == "" {
		return nil, fmt.Errorf("service %s has no published address", s.GetName())
	}

	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Username:     creds.Username,
		Password:     creds.Password,
		DialTimeout:  s.cfg.DialTimeout,
		ReadTimeout:  s.cfg.DialTimeout,
		WriteTimeout: s.cfg.DialTimeout,
	}), nil
}

// Stop stops and removes the container. It is a no-op when the service was
// never started or is already stopped.
func (s *Service) Stop(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	state := s.GetState()
	if !state.IsActive() && state != services.StateFailed {
		logging.Debug(subsystem, "Service %s is not running (%s), nothing to stop", s.GetName(), state)
		return nil
	}
	if s.containerID == "" {
		s.UpdateState(services.StateStopped, services.HealthUnknown, nil)
		return nil
	}

	s.UpdateState(services.StateStopping, s.GetHealth(), nil)

	stopErr := s.runtime.StopContainer(ctx, s.containerID)
	if stopErr != nil {
		logging.Warn(subsystem, "Stopping container %s failed, forcing removal: %v", s.cfg.ContainerName, stopErr)
	}
	if err := s.runtime.RemoveContainer(ctx, s.containerID); err != nil {
		stopFailure := services.NewServiceStopError(s.GetName(), errors.Join(stopErr, err))
		s.UpdateState(services.StateFailed, services.HealthUnknown, stopFailure)
		return stopFailure
	}

	s.containerID = ""
	s.hostPort = ""
	s.UpdateState(services.StateStopped, services.HealthUnknown, nil)
	return nil
}

// GetServiceData exposes the container identity and address
func (s *Service) GetServiceData() map[string]interface{} {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	return map[string]interface{}{
		"containerName": s.cfg.ContainerName,
		"containerID":   s.containerID,
		"image":         s.cfg.Image,
		"address":       s.addrLocked(),
	}
}
