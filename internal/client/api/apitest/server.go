// Package apitest runs a complete todokeeper REST API on the in-memory store
// for client tests.
package apitest

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/rest"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

// AccessTTL is the access token lifetime of the test server.
const AccessTTL = time.Minute

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type Server struct {
	*httptest.Server
	Clock *Clock
}

// NewServer starts the API and closes it when t finishes. The clock drives
// access token expiry and due date checks.
func NewServer(t *testing.T) *Server {
	t.Helper()

	clock := &Clock{now: time.Now().UTC().Truncate(time.Second)}
	m := repomanager.NewInMemoryRepositoryManager()
	cfg := &config.Config{AccessTokenValidityDuration: AccessTTL, RefreshTokenValidityDuration: 24 * time.Hour}
	tm := auth.NewTokenManager([]byte("apitest-secret"), AccessTTL, auth.WithClock(clock.Now))

	users := services.NewUserService(m, tm, nil, cfg, nil)
	users.UseHasher(auth.NewPasswordHasher(&argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}))

	h, err := rest.NewRouter(rest.RouterConfig{
		Users:  users,
		Tasks:  services.NewTaskService(m, nil),
		Tokens: tm,
		Now:    clock.Now,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Server{Server: srv, Clock: clock}
}
