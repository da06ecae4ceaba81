package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testService implements the Service interface for testing
type testService struct {
	name        string
	serviceType ServiceType
	state       ServiceState
	health      HealthStatus
	lastError   error
	callback    StateChangeCallback
}

func (s *testService) Start(ctx context.Context) (StartResult, error) {
	return StartResultStarted, nil
}

func (s *testService) Stop(ctx context.Context) error {
	return nil
}

func (s *testService) CheckHealth(ctx context.Context) (HealthStatus, error) {
	return s.health, nil
}

func (s *testService) Connect(ctx context.Context, creds Credentials) (Connection, error) {
	return nil, errors.New("not supported")
}

func (s *testService) GetState() ServiceState {
	return s.state
}

func (s *testService) GetHealth() HealthStatus {
	return s.health
}

func (s *testService) GetLastError() error {
	return s.lastError
}

func (s *testService) GetName() string {
	return s.name
}

func (s *testService) GetType() ServiceType {
	return s.serviceType
}

func (s *testService) SetStateChangeCallback(callback StateChangeCallback) {
	s.callback = callback
}

func TestRegister(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(&testService{name: "store", serviceType: TypeStore}))

	err := registry.Register(&testService{name: "store", serviceType: TypeStore})
	assert.Error(t, err, "duplicate names are rejected")

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(&testService{serviceType: TypeStore}))

	assert.Len(t, registry.GetAll(), 1)
}

func TestGetAllPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry()

	names := []string{"zeta", "alpha", "mid", "beta"}
	for _, name := range names {
		require.NoError(t, registry.Register(&testService{name: name, serviceType: TypeStore}))
	}

	var got []string
	for _, s := range registry.GetAll() {
		got = append(got, s.GetName())
	}
	assert.Equal(t, names, got)
}

func TestRegistryConcurrency(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(&testService{name: fmt.Sprintf("concurrent-%d", i), serviceType: TypeStore})
		}(i)
		go func() {
			defer wg.Done()
			registry.GetAll()
		}()
	}
	wg.Wait()

	assert.Len(t, registry.GetAll(), 10)
}
