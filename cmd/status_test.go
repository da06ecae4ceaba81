package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"dashtrack/internal/app"
	"dashtrack/internal/services"
)

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   app.StoreStatus
		contains []string
	}{
		{
			name: "running and healthy",
			status: app.StoreStatus{
				Name:           "redis-dashtrack",
				Container:      "redis-dashtrack",
				ContainerID:    "0123456789ab",
				Exists:         true,
				Running:        true,
				Address:        "localhost:6379",
				Health:         services.HealthHealthy,
				PasswordSource: "env:REDIS_DT_PWD",
			},
			contains: []string{"redis-dashtrack", "0123456789ab", "running", "localhost:6379", "Healthy", "env:REDIS_DT_PWD"},
		},
		{
			name: "absent",
			status: app.StoreStatus{
				Name:           "redis-dashtrack",
				Container:      "redis-dashtrack",
				Health:         services.HealthUnknown,
				PasswordSource: "default",
			},
			contains: []string{"absent", "-", "Unknown", "default"},
		},
		{
			name: "stopped",
			status: app.StoreStatus{
				Name:      "redis-dashtrack",
				Container: "redis-dashtrack",
				Exists:    true,
				Health:    services.HealthUnknown,
			},
			contains: []string{"stopped"},
		},
		{
			name: "unhealthy",
			status: app.StoreStatus{
				Name:      "redis-dashtrack",
				Container: "redis-dashtrack",
				Exists:    true,
				Running:   true,
				Health:    services.HealthUnhealthy,
				HealthErr: errors.New("WRONGPASS"),
			},
			contains: []string{"Unhealthy", "Health check failed:", "WRONGPASS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderStatus(&buf, tt.status)

			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "x", orDash("x"))
}
