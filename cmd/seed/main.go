// Command seed wipes the users and analytics collections and loads the demo
// data set.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/99minutos/opsboard/internal/core/service"
	"github.com/99minutos/opsboard/internal/infrastructure/config"
	mongostore "github.com/99minutos/opsboard/internal/infrastructure/db/mongo"
	"github.com/99minutos/opsboard/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "opsboard-seed"})
		l := logger.Get()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "opsboard-seed"})

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongostore.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to set up collections")
	}
	if err := mongostore.Wipe(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to clear existing data")
	}
	log.Info().Msg("cleared existing data")

	users := service.NewUserService(mongostore.NewUserRepository(db), nil, log)
	analytics := service.NewAnalyticsService(mongostore.NewAnalyticsRepository(db), nil, log)
	if err := seed(ctx, users, analytics); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	log.Info().
		Int("users", len(seedUsers)).
		Int("analytics", len(seedMetrics)).
		Msg("database seeded successfully")
}
