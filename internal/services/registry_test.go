package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aliadodoc/pkg/doctypes"
)

// Mock service for testing
type MockService struct {
	name            string
	initializeCalls *[]string
	initializeError error
	initialized     bool
}

func NewMockService(name string, calls *[]string) *MockService {
	return &MockService{name: name, initializeCalls: calls}
}

func (m *MockService) Name() string {
	return m.name
}

func (m *MockService) Initialize() error {
	m.initialized = true
	if m.initializeCalls != nil {
		*m.initializeCalls = append(*m.initializeCalls, m.name)
	}
	return m.initializeError
}

func TestRegistry_NewRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.NotNil(t, registry)
	assert.Empty(t, registry.GetAllServices())
	assert.Empty(t, registry.Names())
}

func TestRegistry_RegisterService_Duplicate(t *testing.T) {
	registry := NewRegistry()
	service1 := NewMockService("duplicate", nil)
	service2 := NewMockService("duplicate", nil)

	require.NoError(t, registry.RegisterService(service1))

	err := registry.RegisterService(service2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "service duplicate already registered")

	retrieved, err := registry.GetService("duplicate")
	assert.NoError(t, err)
	assert.Same(t, service1, retrieved)
}

func TestRegistry_GetService(t *testing.T) {
	registry := NewRegistry()
	service := NewMockService("test", nil)
	require.NoError(t, registry.RegisterService(service))

	tests := []struct {
		name        string
		serviceName string
		wantErr     bool
	}{
		{name: "get existing service", serviceName: "test"},
		{name: "get non-existing service", serviceName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retrieved, err := registry.GetService(tt.serviceName)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "not found")
				assert.Nil(t, retrieved)
				return
			}
			assert.NoError(t, err)
			assert.Same(t, service, retrieved)
		})
	}
}

func TestRegistry_InitializeAll_RegistrationOrder(t *testing.T) {
	var calls []string
	registry := NewRegistry()
	for _, name := range []string{"client_factory", "remote_files", "attachment", "generation"} {
		require.NoError(t, registry.RegisterService(NewMockService(name, &calls)))
	}

	require.NoError(t, registry.InitializeAll())
	assert.Equal(t, []string{"client_factory", "remote_files", "attachment", "generation"}, calls)
	assert.Equal(t, calls, registry.Names())
}

func TestRegistry_InitializeAll_WithError(t *testing.T) {
	var calls []string
	registry := NewRegistry()

	service1 := NewMockService("service1", &calls)
	service2 := NewMockService("service2", &calls)
	service3 := NewMockService("service3", &calls)
	service2.initializeError = errors.New("initialization failed")

	require.NoError(t, registry.RegisterService(service1))
	require.NoError(t, registry.RegisterService(service2))
	require.NoError(t, registry.RegisterService(service3))

	err := registry.InitializeAll()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize service service2")
	assert.Contains(t, err.Error(), "initialization failed")
	assert.False(t, service3.initialized)
}

func TestRegistry_GetAllServices_ReturnsCopy(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(NewMockService("service1", nil)))

	allServices := registry.GetAllServices()
	allServices["new_service"] = NewMockService("new_service", nil)

	_, err := registry.GetService("new_service")
	assert.Error(t, err)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	numGoroutines := 10
	servicesPerGoroutine := 5

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < servicesPerGoroutine; j++ {
				assert.NoError(t, registry.RegisterService(NewMockService(fmt.Sprintf("service_%d_%d", id, j), nil)))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, registry.GetAllServices(), numGoroutines*servicesPerGoroutine)
	assert.NoError(t, registry.InitializeAll())
}

func TestRegistry_RealServices(t *testing.T) {
	registry := NewRegistry()
	factory := NewClientFactoryService(0, nil)
	remote := NewRemoteFileService(factory)

	services := []doctypes.Service{
		factory,
		remote,
		NewAttachmentService(remote),
		NewGenerationService(factory, nil),
		NewStreamService(),
		NewModelCatalogService(),
		NewMarkdownService("notty", 80),
	}
	for _, service := range services {
		require.NoError(t, registry.RegisterService(service))
	}

	assert.NoError(t, registry.InitializeAll())
}
