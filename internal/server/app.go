// Package server initializes and runs the todokeeper server: it wires storage,
// services and transports together and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	gs "github.com/dmitrijs2005/todokeeper/internal/server/grpc"
	"github.com/dmitrijs2005/todokeeper/internal/server/lockout"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/rest"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

const purgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	redis       redis.UniversalClient
	userService *services.UserService
	taskService *services.TaskService
}

// NewApp builds every component from c. Logs go to out.
func NewApp(c *config.Config, out io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, out)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	m, err := repomanager.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{
		config:      c,
		logger:      logger,
		repomanager: m,
		tokens:      auth.NewTokenManager([]byte(c.SecretKey), c.AccessTokenValidityDuration),
	}

	var locks lockout.Store
	if c.LockoutRedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.LockoutRedisAddr})
		locks = lockout.NewRedisStore(app.redis, c.MaxLoginAttempts, c.LockoutCooldown)
	} else {
		locks = lockout.NewMemoryStore(c.MaxLoginAttempts, c.LockoutCooldown)
	}

	app.userService = services.NewUserService(m, app.tokens, locks, c, logger)
	app.taskService = services.NewTaskService(m, logger)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router, err := rest.NewRouter(rest.RouterConfig{
		Users:         app.userService,
		Tasks:         app.taskService,
		Tokens:        app.tokens,
		Logger:        app.logger,
		AuthRateLimit: app.config.AuthRateLimit,
		Metrics:       app.config.MetricsEnabled,
		Development:   app.config.Development,
		Health:        app.repomanager.Ping,
	})
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repomanager.Ping, 0)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRefreshTokens drops expired refresh tokens until ctx is done.
func (app *App) purgeRefreshTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredRefreshTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired refresh tokens purged", "count", n)
			}
		}
	}
}

// Run migrates the schema, then serves until ctx is cancelled or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx); err != nil {
		app.close(ctx)
		return fmt.Errorf("migrations: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeRefreshTokens(ctx, purgeInterval)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close(ctx context.Context) {
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
}
