package services

import (
	"fmt"
	"sync"

	"aliadodoc/pkg/doctypes"
)

// Registry manages service registration and lifecycle for AliadoDoc services.
// Services are initialized in registration order, so dependencies register first.
type Registry struct {
	mu       sync.RWMutex
	services map[string]doctypes.Service
	order    []string
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]doctypes.Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service doctypes.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (doctypes.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// InitializeAll initializes all registered services in registration order.
func (r *Registry) InitializeAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if err := r.services[name].Initialize(); err != nil {
			return fmt.Errorf("failed to initialize service %s: %w", name, err)
		}
	}

	return nil
}

// GetAllServices returns a copy of all registered services.
func (r *Registry) GetAllServices() map[string]doctypes.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]doctypes.Service, len(r.services))
	for name, service := range r.services {
		result[name] = service
	}

	return result
}

// Names returns service names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
