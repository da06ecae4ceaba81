package services

import (
	"context"
	"fmt"
)

// ServiceState is the lifecycle state of a service
type ServiceState string

const (
	StateUninitialized  ServiceState = "Uninitialized"
	StateStarting       ServiceState = "Starting"
	StateRunning        ServiceState = "Running"
	StateAlreadyRunning ServiceState = "AlreadyRunning"
	StateHealthVerified ServiceState = "HealthVerified"
	StateStopping       ServiceState = "Stopping"
	StateStopped        ServiceState = "Stopped"
	StateFailed         ServiceState = "Failed"
)

// IsActive reports whether a service in this state has a live process behind it.
func (s ServiceState) IsActive() bool {
	switch s {
	case StateRunning, StateAlreadyRunning, StateHealthVerified:
		return true
	default:
		return false
	}
}

// HealthStatus is the outcome of the latest health probe
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "Unknown"
	HealthHealthy   HealthStatus = "Healthy"
	HealthUnhealthy HealthStatus = "Unhealthy"
)

// StartResult distinguishes a fresh start from finding an instance that was
// already running under the same identity.
type StartResult int

const (
	StartResultStarted StartResult = iota
	StartResultAlreadyRunning
)

func (r StartResult) String() string {
	switch r {
	case StartResultStarted:
		return "started"
	case StartResultAlreadyRunning:
		return "already running"
	default:
		return "unknown"
	}
}

// ServiceType represents the type of service
type ServiceType string

const (
	TypeStore ServiceType = "Store"
)

// Credentials authenticate a connection to a service.
type Credentials struct {
	Username string
	Password string
}

// String never includes the password.
func (c Credentials) String() string {
	if c.Password == "" {
		return fmt.Sprintf("%s (no password)", c.Username)
	}
	return fmt.Sprintf("%s (password redacted)", c.Username)
}

// Connection is a client handle returned by Service.Connect. The caller owns
// it and must close it.
type Connection interface {
	Close() error
}

// Service is the core interface that all services must implement
type Service interface {
	// Lifecycle management. Start is idempotent and reports whether it
	// launched a new instance. Stop is a no-op for a service that was never
	// started or is already stopped.
	Start(ctx context.Context) (StartResult, error)
	Stop(ctx context.Context) error

	// CheckHealth performs a synchronous, time-bounded probe
	CheckHealth(ctx context.Context) (HealthStatus, error)

	// Connect returns a new client handle. It never changes service state.
	Connect(ctx context.Context, creds Credentials) (Connection, error)

	// State management
	GetState() ServiceState
	GetHealth() HealthStatus
	GetLastError() error

	// Service metadata
	GetName() string
	GetType() ServiceType

	// State change notifications
	// The service should call this callback when its state changes
	SetStateChangeCallback(callback StateChangeCallback)
}

// StateChangeCallback is called when a service's state changes
type StateChangeCallback func(name string, oldState, newState ServiceState, health HealthStatus, err error)

// StateUpdater is an optional interface for services that allow external state updates.
// The orchestrator uses it to record the outcome of the health wait.
type StateUpdater interface {
	UpdateState(state ServiceState, health HealthStatus, err error)
}

// ServiceDataProvider is an optional interface for services that expose additional data
type ServiceDataProvider interface {
	// GetServiceData returns service-specific data such as the container ID
	// and the address clients connect to
	GetServiceData() map[string]interface{}
}

// ServiceRegistry holds services in registration order
type ServiceRegistry interface {
	// Register appends a service. Names must be unique.
	Register(service Service) error

	// GetAll returns all registered services in registration order
	GetAll() []Service
}
