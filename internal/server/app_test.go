package server

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = repomanager.MemoryDSN
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = ""
	c.Development = true
	c.MetricsEnabled = false
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := memoryConfig()
	c.LogLevel = "chatty"

	_, err := NewApp(c, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	c := memoryConfig()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	c.EndpointAddrGRPC = ln.Addr().String()
	require.NoError(t, ln.Close())

	app, err := NewApp(c, &out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Contains(t, out.String(), "App stopped")
}

func TestApp_RedisLockout(t *testing.T) {
	mr := miniredis.RunT(t)
	c := memoryConfig()
	c.LockoutRedisAddr = mr.Addr()
	c.MaxLoginAttempts = 2

	app, err := NewApp(c, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { app.close(context.Background()) })
	ctx := context.Background()

	_, err = app.userService.Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = app.userService.Login(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, common.ErrInvalidCredential)
	}
	_, err = app.userService.Login(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrAccountLocked)
	assert.True(t, mr.Exists("lockout:lock:ada@example.com"))
}

func TestApp_PurgeRefreshTokensStops(t *testing.T) {
	app, err := NewApp(memoryConfig(), &bytes.Buffer{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.purgeRefreshTokens(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop")
	}
}
