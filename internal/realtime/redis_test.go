package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Redis test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisRegistry(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	registry := NewRedisRegistry(rdb, time.Minute)

	_, ok, err := registry.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, registry.Register(ctx, "u1", "instance-a"))
	require.NoError(t, registry.Register(ctx, "u1", "instance-b"))

	ttl, err := rdb.TTL(ctx, "realtime:session:u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// A stale instance cannot remove the newer registration.
	require.NoError(t, registry.Unregister(ctx, "u1", "instance-a"))
	instance, ok, err := registry.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "instance-b", instance)

	require.NoError(t, registry.Unregister(ctx, "u1", "instance-b"))
	_, ok, err = registry.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	rdb := startRedis(t)
	bus := NewRedisBus(rdb, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Envelope, 1)
	go func() {
		_ = bus.Subscribe(ctx, func(env Envelope) { received <- env })
	}()

	want := Envelope{Origin: "instance-a", Target: "instance-b", UserID: "u1", Frame: Frame{Event: "nueva-venta"}}

	// Publish until the subscription is live; pub/sub drops messages sent before it.
	var got Envelope
	require.Eventually(t, func() bool {
		if err := bus.Publish(context.Background(), want); err != nil {
			return false
		}
		select {
		case got = <-received:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, want, got)
}
