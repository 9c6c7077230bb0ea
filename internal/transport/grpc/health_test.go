package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// mockPinger fails while down is set.
type mockPinger struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (m *mockPinger) Ping(_ context.Context, _ *readpref.ReadPref) error {
	m.calls.Add(1)
	if m.down.Load() {
		return errors.New("server selection timeout")
	}
	return nil
}

func check(t *testing.T, h *HealthServer, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.srv.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func Test_HealthServer_Probe(t *testing.T) {
	testCases := []struct {
		name     string
		down     bool
		expected grpc_health_v1.HealthCheckResponse_ServingStatus
	}{
		{name: "database reachable", down: false, expected: grpc_health_v1.HealthCheckResponse_SERVING},
		{name: "database unreachable", down: true, expected: grpc_health_v1.HealthCheckResponse_NOT_SERVING},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			pinger := &mockPinger{}
			pinger.down.Store(tc.down)
			h := NewHealthServer(pinger, time.Second, slog.New(slog.NewJSONHandler(io.Discard, nil)))
			// when
			status := h.Probe(context.Background())
			// then
			assert.Equal(t, tc.expected, status)
			assert.Equal(t, tc.expected, check(t, h, ""))
			assert.Equal(t, tc.expected, check(t, h, ServiceName))
		})
	}
}

func Test_HealthServer_Watch(t *testing.T) {
	// given
	pinger := &mockPinger{}
	h := NewHealthServer(pinger, time.Second, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check(t, h, ServiceName))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// when
	go func() { done <- h.Watch(ctx, 10*time.Millisecond) }()

	// then
	assert.Eventually(t, func() bool {
		return check(t, h, ServiceName) == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	pinger.down.Store(true)
	assert.Eventually(t, func() bool {
		return check(t, h, ServiceName) == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	pinger.down.Store(false)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check(t, h, ""))
	assert.GreaterOrEqual(t, pinger.calls.Load(), int32(2))
}
