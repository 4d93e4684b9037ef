package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/app"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/assist"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/audit"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/database"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/platform/config"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/platform/logging"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/redis"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	deviceRepo := database.NewDeviceRepo(pool)
	sessionRepo := redis.NewSessionRepo(redisClient)
	events := redis.NewPubSub(redisClient)
	auditLog := audit.NewRecorder(cfg.AuditLogCapacity, clock)

	appSvc := app.NewService(deviceRepo, sessionRepo, events, auditLog, clock)

	// Assist is optional: without an API key the endpoint is not registered.
	// Pass nil explicitly to avoid a typed-nil interface.
	var srv *server.Server
	if cfg.AnalysisAPIKey != "" {
		gateway := assist.NewGateway(cfg.AnalysisAPIURL, cfg.AnalysisAPIKey)
		srv = server.New(cfg, appSvc, events, auditLog, gateway, pool, redisClient, clock)
	} else {
		slog.Info("Analysis API key not configured, assist endpoint disabled")
		srv = server.New(cfg, appSvc, events, auditLog, nil, pool, redisClient, clock)
	}

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
