package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/audit"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
	apperrors "github.com/PADALAPRATHYUSHA/screen-mirroring/internal/errors"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/platform/config"
)

// analyzer is the assist collaborator. nil disables the assist endpoint.
type analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks.
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       domain.AppService
	events    domain.SessionEvents
	auditLog  *audit.Recorder
	assistant analyzer
	postgres  postgresHealthChecker
	redis     redisHealthChecker
	clock     clockwork.Clock
	startTime time.Time
}

func New(cfg *config.Config, app domain.AppService, events domain.SessionEvents, auditLog *audit.Recorder, assistant analyzer, postgres postgresHealthChecker, redis redisHealthChecker, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		events:    events,
		auditLog:  auditLog,
		assistant: assistant,
		postgres:  postgres,
		redis:     redis,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
