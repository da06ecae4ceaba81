package services

import (
	"errors"
	"fmt"
)

// ServiceAlreadyRunningError reports that a start found an instance already
// running under the same identity. It is only returned when the caller asks
// for a strict start; otherwise the condition is logged as a warning.
type ServiceAlreadyRunningError struct {
	// Service is the name of the service
	Service string

	// ContainerID identifies the running instance, if known
	ContainerID string
}

func (e *ServiceAlreadyRunningError) Error() string {
	if e.ContainerID != "" {
		return fmt.Sprintf("service %s is already running (container %s)", e.Service, e.ContainerID)
	}
	return fmt.Sprintf("service %s is already running", e.Service)
}

// ServiceUnhealthyError reports that a service did not pass its health check
// after starting. It is fatal to startup.
type ServiceUnhealthyError struct {
	Service string
	Health  HealthStatus
	Err     error
}

func (e *ServiceUnhealthyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s is unhealthy (%s): %v", e.Service, e.Health, e.Err)
	}
	return fmt.Sprintf("service %s is unhealthy (%s)", e.Service, e.Health)
}

func (e *ServiceUnhealthyError) Unwrap() error {
	return e.Err
}

// ServiceStopError reports that stopping a service failed. Teardown logs it
// and continues with the remaining services.
type ServiceStopError struct {
	Service string
	Err     error
}

func (e *ServiceStopError) Error() string {
	return fmt.Sprintf("failed to stop service %s: %v", e.Service, e.Err)
}

func (e *ServiceStopError) Unwrap() error {
	return e.Err
}

// NewServiceAlreadyRunningError creates a ServiceAlreadyRunningError.
func NewServiceAlreadyRunningError(service, containerID string) *ServiceAlreadyRunningError {
	return &ServiceAlreadyRunningError{Service: service, ContainerID: containerID}
}

// NewServiceUnhealthyError creates a ServiceUnhealthyError.
func NewServiceUnhealthyError(service string, health HealthStatus, err error) *ServiceUnhealthyError {
	return &ServiceUnhealthyError{Service: service, Health: health, Err: err}
}

// NewServiceStopError creates a ServiceStopError.
func NewServiceStopError(service string, err error) *ServiceStopError {
	return &ServiceStopError{Service: service, Err: err}
}

// IsAlreadyRunning checks if an error is or wraps a ServiceAlreadyRunningError.
func IsAlreadyRunning(err error) bool {
	var target *ServiceAlreadyRunningError
	return errors.As(err, &target)
}

// IsUnhealthy checks if an error is or wraps a ServiceUnhealthyError.
//
// Example:
//
//	if services.IsUnhealthy(err) {
//	    os.Exit(ExitCodeStartupFailed)
//	}
func IsUnhealthy(err error) bool {
	var target *ServiceUnhealthyError
	return errors.As(err, &target)
}

// IsStopError checks if an error is or wraps a ServiceStopError.
func IsStopError(err error) bool {
	var target *ServiceStopError
	return errors.As(err, &target)
}
