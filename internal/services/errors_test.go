package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceUnhealthyError(t *testing.T) {
	cause := errors.New("PING timed out")
	err := NewServiceUnhealthyError("store", HealthUnhealthy, cause)

	assert.Equal(t, "service store is unhealthy (Unhealthy): PING timed out", err.Error())
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("startup failed: %w", err)
	assert.True(t, IsUnhealthy(wrapped))
	assert.False(t, IsAlreadyRunning(wrapped))
	assert.False(t, IsStopError(wrapped))
}

func TestServiceAlreadyRunningError(t *testing.T) {
	err := NewServiceAlreadyRunningError("store", "abc123")
	assert.Equal(t, "service store is already running (container abc123)", err.Error())
	assert.True(t, IsAlreadyRunning(fmt.Errorf("strict start: %w", err)))

	assert.Equal(t, "service store is already running", NewServiceAlreadyRunningError("store", "").Error())
}

func TestServiceStopError(t *testing.T) {
	cause := errors.New("daemon unreachable")
	err := NewServiceStopError("store", cause)

	assert.Contains(t, err.Error(), "store")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsStopError(err))
	assert.False(t, IsUnhealthy(err))
}
