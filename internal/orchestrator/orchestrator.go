package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"dashtrack/internal/services"
	"dashtrack/pkg/logging"
)

const subsystem = "Orchestrator"

// DefaultHealthTimeout bounds the wait for a started service to report healthy.
const DefaultHealthTimeout = 30 * time.Second

// Health probes back off exponentially between these bounds.
const (
	healthInitialInterval = 100 * time.Millisecond
	healthMaxInterval     = 2 * time.Second
)

// Config holds the configuration for the orchestrator.
type Config struct {
	// Services are started in order. The first one is the primary service
	// used by Run and Connect.
	Services []services.Service

	// HealthTimeout bounds the health wait per service
	HealthTimeout time.Duration

	// StrictStart turns finding an already running service into a
	// ServiceAlreadyRunningError instead of a warning.
	StrictStart bool

	// Credentials are used by Run
	Credentials services.Credentials

	// Logger receives the orchestrator's records. It is closed by Teardown.
	// When nil the process-wide logger is used.
	Logger *logging.Logger
}

// Orchestrator owns a set of services for the lifetime of a run. It starts
// them at construction, verifies their health and stops them exactly once
// in Teardown.
type Orchestrator struct {
	registry services.ServiceRegistry
	logger   *logging.Logger
	creds    services.Credentials

	healthTimeout time.Duration

	mu      sync.RWMutex
	started []services.Service

	teardownOnce sync.Once
	torndown     bool
}

// New creates an orchestrator and starts every configured service in order.
// If any service fails to start or become healthy, the services started so
// far are stopped in reverse order and the error is returned.
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.For(subsystem)
	}

	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}

	o := &Orchestrator{
		registry:      services.NewRegistry(),
		logger:        logger,
		creds:         cfg.Credentials,
		healthTimeout: healthTimeout,
	}

	for _, svc := range cfg.Services {
		if err := o.registry.Register(svc); err != nil {
			o.logger.Error(err, "Invalid service configuration")
			o.Teardown(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("failed to register service: %w", err)
		}
	}

	all := o.registry.GetAll()
	o.setupStateChangeNotifications(all)

	for _, svc := range all {
		if err := o.startService(ctx, svc, cfg.StrictStart); err != nil {
			o.logger.Error(err, "Startup failed, stopping %d started service(s)", o.startedCount())
			// Stop even when the startup was interrupted
			o.Teardown(context.WithoutCancel(ctx))
			return nil, err
		}
	}

	o.logger.Info("Orchestrator ready with %d service(s)", len(all))
	return o, nil
}

// With creates an orchestrator, passes it to fn and tears it down when fn
// returns, returns an error or panics. A panic is re-raised after teardown.
func With(ctx context.Context, cfg Config, fn func(*Orchestrator) error) error {
	o, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer o.Teardown(context.WithoutCancel(ctx))

	return fn(o)
}

func (o *Orchestrator) startService(ctx context.Context, svc services.Service, strict bool) error {
	name := svc.GetName()
	o.logger.Info("Starting service %s", name)

	result, err := svc.Start(ctx)
	if err != nil {
		// A partially started service still gets a chance to clean up
		o.track(svc)
		return fmt.Errorf("failed to start service %s: %w", name, err)
	}

	switch result {
	case services.StartResultAlreadyRunning:
		if strict {
			// An instance this run did not start is left alone
			err := services.NewServiceAlreadyRunningError(name, containerID(svc))
			o.logger.Error(err, "Refusing to reuse running service %s", name)
			return err
		}
		o.logger.Warn("Service %s is already running, reusing it", name)
	default:
		o.logger.Info("Service %s started", name)
	}
	o.track(svc)

	updater, _ := svc.(services.StateUpdater)

	health, err := o.waitHealthy(ctx, svc)
	if err != nil {
		var failure error = services.NewServiceUnhealthyError(name, health, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			failure = fmt.Errorf("health check for service %s interrupted: %w", name, ctxErr)
		}
		if updater != nil {
			updater.UpdateState(services.StateFailed, health, failure)
		}
		return failure
	}

	if updater != nil {
		updater.UpdateState(services.StateHealthVerified, services.HealthHealthy, nil)
	}
	o.logger.Info("Service %s is healthy", name)
	return nil
}

// waitHealthy probes svc until it reports healthy or the health timeout
// elapses. It returns the last observed health.
func (o *Orchestrator) waitHealthy(ctx context.Context, svc services.Service) (services.HealthStatus, error) {
	last := services.HealthUnknown
	attempts := 0

	probe := func() (services.HealthStatus, error) {
		attempts++
		health, err := svc.CheckHealth(ctx)
		last = health
		if err != nil {
			return health, err
		}
		if health != services.HealthHealthy {
			return health, fmt.Errorf("health is %s", health)
		}
		return health, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = healthInitialInterval
	b.MaxInterval = healthMaxInterval

	_, err := backoff.Retry(ctx, probe,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(o.healthTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			o.logger.Debug("Health check for %s failed (attempt %d), retrying in %s: %v", svc.GetName(), attempts, next, err)
		}),
	)
	if err != nil {
		if last == services.HealthUnknown || last == services.HealthHealthy {
			last = services.HealthUnhealthy
		}
		return last, err
	}
	return services.HealthHealthy, nil
}

func (o *Orchestrator) track(svc services.Service) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, svc)
}

func (o *Orchestrator) startedCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.started)
}

// setupStateChangeNotifications logs service state transitions
func (o *Orchestrator) setupStateChangeNotifications(svcs []services.Service) {
	for _, service := range svcs {
		service.SetStateChangeCallback(o.createStateChangeCallback())
	}
}

// createStateChangeCallback creates a state change callback that logs transitions
func (o *Orchestrator) createStateChangeCallback() services.StateChangeCallback {
	return func(name string, oldState, newState services.ServiceState, health services.HealthStatus, err error) {
		if newState == services.StateFailed && err != nil {
			o.logger.Debug("Service %s state changed: %s -> %s (health: %s, error: %v)", name, oldState, newState, health, err)
			return
		}
		o.logger.Debug("Service %s state changed: %s -> %s (health: %s)", name, oldState, newState, health)
	}
}

// Primary returns the first configured service.
func (o *Orchestrator) Primary() (services.Service, error) {
	all := o.registry.GetAll()
	if len(all) == 0 {
		return nil, errors.New("orchestrator has no services")
	}
	return all[0], nil
}

// Connect returns a new connection to the primary service. The caller owns it.
func (o *Orchestrator) Connect(ctx context.Context, creds services.Credentials) (services.Connection, error) {
	if o.isTornDown() {
		return nil, errors.New("orchestrator has been torn down")
	}

	primary, err := o.Primary()
	if err != nil {
		return nil, err
	}
	return primary.Connect(ctx, creds)
}

// Run connects to the primary service with the configured credentials, runs
// fn and closes the connection.
func (o *Orchestrator) Run(ctx context.Context, fn func(ctx context.Context, conn services.Connection) error) error {
	conn, err := o.Connect(ctx, o.creds)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			o.logger.Warn("Failed to close connection: %v", cerr)
		}
	}()

	return fn(ctx, conn)
}

// Teardown stops every started service in reverse start order and closes the
// orchestrator logger. Only the first call has an effect. Stop failures are
// logged and never returned.
func (o *Orchestrator) Teardown(ctx context.Context) {
	o.teardownOnce.Do(func() {
		o.mu.Lock()
		started := o.started
		o.started = nil
		o.torndown = true
		o.mu.Unlock()

		var failures []error
		for i := len(started) - 1; i >= 0; i-- {
			svc := started[i]
			if err := svc.Stop(ctx); err != nil {
				if !services.IsStopError(err) {
					err = services.NewServiceStopError(svc.GetName(), err)
				}
				o.logger.Error(err, "Failed to stop service %s, continuing teardown", svc.GetName())
				failures = append(failures, err)
				continue
			}
			o.logger.Info("Service %s stopped", svc.GetName())
		}

		if len(failures) > 0 {
			o.logger.Warn("Teardown finished with %d failure(s): %v", len(failures), errors.Join(failures...))
		} else {
			o.logger.Info("Teardown complete")
		}

		if err := o.logger.Close(); err != nil {
			logging.Warn(subsystem, "Failed to close orchestrator log: %v", err)
		}
	})
}

func (o *Orchestrator) isTornDown() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.torndown
}

// GetAllServices returns status for all services in start order.
func (o *Orchestrator) GetAllServices() []ServiceStatus {
	all := o.registry.GetAll()
	statuses := make([]ServiceStatus, len(all))

	for i, service := range all {
		statuses[i] = toStatus(service)
	}

	return statuses
}

// ServiceStatus represents the status of a service.
type ServiceStatus struct {
	Name   string
	Type   string
	State  string
	Health string
	Error  error
}

func toStatus(service services.Service) ServiceStatus {
	return ServiceStatus{
		Name:   service.GetName(),
		Type:   string(service.GetType()),
		State:  string(service.GetState()),
		Health: string(service.GetHealth()),
		Error:  service.GetLastError(),
	}
}

func containerID(svc services.Service) string {
	provider, ok := svc.(services.ServiceDataProvider)
	if !ok {
		return ""
	}
	id, _ := provider.GetServiceData()["containerID"].(string)
	return id
}
