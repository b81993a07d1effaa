// Command api serves the opsboard REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/api"
	"github.com/99minutos/opsboard/internal/api/handler"
	"github.com/99minutos/opsboard/internal/core/ports"
	"github.com/99minutos/opsboard/internal/core/service"
	"github.com/99minutos/opsboard/internal/infrastructure/config"
	"github.com/99minutos/opsboard/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/opsboard/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/opsboard/internal/infrastructure/db/redis"
	"github.com/99minutos/opsboard/pkg/logger"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "opsboard-api"})
		l := logger.Get()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "opsboard-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		userRepo      ports.UserRepository
		analyticsRepo ports.AnalyticsRepository
		replay        service.ReplayGuard
		checks        = map[string]handler.CheckFunc{}
	)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		userRepo = memory.NewUserRepository()
		analyticsRepo = memory.NewAnalyticsRepository()
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to disconnect mongo")
			}
		}()
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

		if err := mongostore.EnsureSchema(ctx, db); err != nil {
			return err
		}
		userRepo = mongostore.NewUserRepository(db)
		analyticsRepo = mongostore.NewAnalyticsRepository(db)
		checks["mongo"] = func(ctx context.Context) error { return mongostore.Ping(ctx, db) }
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")

		replay = redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	e := api.NewRouter(api.Options{
		Users:       service.NewUserService(userRepo, replay, logger.Component("users")),
		Analytics:   service.NewAnalyticsService(analyticsRepo, replay, logger.Component("analytics")),
		BasePath:    cfg.BasePath,
		Env:         cfg.Env,
		Version:     cfg.Version,
		FrontendURL: cfg.FrontendURL,
		Checks:      checks,
		Registerer:  prometheus.DefaultRegisterer,
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.StoreDriver).
			Msgf("API listening on :%s%s", cfg.Port, cfg.BasePath)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
