// Package services provides the service abstraction layer for dashtrack.
//
// A Service is an externally managed process the application depends on,
// such as the Redis store. The package defines the interface every service
// implements, the lifecycle states it moves through, the errors the
// lifecycle can produce and an ordered registry.
//
// # Lifecycle
//
//	Uninitialized -> Starting -> Running | AlreadyRunning -> HealthVerified -> Stopped
//
// Any failure moves the service to Failed. Start is idempotent: finding an
// instance that is already running under the same identity is reported as
// StartResultAlreadyRunning instead of an error. Stop is safe to call any
// number of times and stops the underlying process at most once.
//
// # Embedding BaseService
//
// Concrete services embed *BaseService for thread-safe state, health and
// last-error tracking plus state change notifications:
//
//	type Service struct {
//	    *services.BaseService
//	    ...
//	}
//
//	func (s *Service) Start(ctx context.Context) (services.StartResult, error) {
//	    s.UpdateState(services.StateStarting, services.HealthUnknown, nil)
//	    ...
//	}
//
// # Errors
//
// ServiceAlreadyRunningError, ServiceUnhealthyError and ServiceStopError are
// checked with IsAlreadyRunning, IsUnhealthy and IsStopError, which unwrap.
package services
