package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

func startBufServer(t *testing.T, srv *GRPCServer) (healthpb.HealthClient, context.CancelFunc, <-chan error) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = conn.Close()
	})
	return healthpb.NewHealthClient(conn), cancel, done
}

func TestHealth_FollowsChecker(t *testing.T) {
	var failing atomic.Bool
	check := func(context.Context) error {
		if failing.Load() {
			return errors.New("db down")
		}
		return nil
	}
	srv := NewGRPCServer("", logging.Nop{}, check, time.Hour)
	client, _, _ := startBufServer(t, srv)
	ctx := context.Background()

	for _, name := range []string{"", ServiceName} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}

	failing.Store(true)
	srv.updateStatus(ctx)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	failing.Store(false)
	srv.updateStatus(ctx)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestHealth_WatcherPolls(t *testing.T) {
	var calls atomic.Int32
	check := func(context.Context) error {
		calls.Add(1)
		return nil
	}
	srv := NewGRPCServer("", logging.Nop{}, check, 10*time.Millisecond)
	_, _, _ = startBufServer(t, srv)

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("", logging.Nop{}, nil, time.Hour)
	client, cancel, done := startBufServer(t, srv)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, nil, 0)

	assert.Error(t, srv.Run(context.Background()))
}
