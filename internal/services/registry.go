package services

import (
	"fmt"
	"sync"
)

// registry is an ordered implementation of ServiceRegistry
type registry struct {
	mu       sync.RWMutex
	order    []string
	services map[string]Service
}

// NewRegistry creates a new service registry
func NewRegistry() ServiceRegistry {
	return &registry{
		services: make(map[string]Service),
	}
}

// Register adds a service to the registry
func (r *registry) Register(service Service) error {
	if service == nil {
		return fmt.Errorf("cannot register nil service")
	}

	name := service.GetName()
	if name == "" {
		return fmt.Errorf("service has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// GetAll returns all registered services
func (r *registry) GetAll() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]Service, 0, len(r.order))
	for _, name := range r.order {
		services = append(services, r.services[name])
	}
	return services
}
