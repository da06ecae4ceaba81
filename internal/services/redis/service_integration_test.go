//go:build integration

package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"dashtrack/internal/services"
)

// TestService_AdoptsRealContainer starts a password protected Redis with
// testcontainers and checks that the service adopts it, probes it and hands
// out working clients.
func TestService_AdoptsRealContainer(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.2.2-bookworm",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
		testcontainers.WithCmd("redis-server", "--requirepass", "test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(endpoint)
	require.NoError(t, err)

	rt := newFakeRuntime(port)
	rt.running["redis-dashtrack"] = container.GetContainerID()

	svc, err := NewService(Config{
		Name:          "store",
		ContainerName: "redis-dashtrack",
		Image:         "redis:7.2.2-bookworm",
		Host:          host,
		Username:      "default",
		Password:      "test",
	}, rt)
	require.NoError(t, err)

	result, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.StartResultAlreadyRunning, result)

	health, err := svc.CheckHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.HealthHealthy, health)

	client, err := svc.Client(ctx, services.Credentials{Username: "default", Password: "test"})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "dashtrack:ping", "ok", time.Minute).Err())
	assert.Equal(t, "ok", client.Get(ctx, "dashtrack:ping").Val())

	starts, _, _ := rt.counts()
	assert.Zero(t, starts)
}
