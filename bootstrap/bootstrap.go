package bootstrap

import (
	"context"
	"errors"
	"time"

	"ecocommute-backend/internal/config"
	"ecocommute-backend/internal/infrastructure/cache"
	"ecocommute-backend/internal/infrastructure/database"
	"ecocommute-backend/internal/infrastructure/metrics"
	"ecocommute-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Open connects the database and Redis and migrates the schema when AUTO_MIGRATE is set.
// Redis is optional: without REDIS_URL health counters and token revocation are disabled.
func Open(cfg *config.Config) (router.Deps, error) {
	if cfg.DatabaseURL == "" {
		return router.Deps{}, errors.New("DATABASE_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return router.Deps{}, err
	}
	if err := (&database.Pinger{DB: db}).Ping(); err != nil {
		return router.Deps{}, err
	}
	log.Info().Msg("database connected")
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return router.Deps{}, err
		}
	}

	rdb, err := cache.Open(cfg.RedisURL)
	if err != nil {
		return router.Deps{}, err
	}
	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return router.Deps{}, err
		}
		log.Info().Msg("redis connected")
	} else {
		log.Warn().Msg("REDIS_URL not set; health counters and logout revocation disabled")
	}
	return router.Deps{DB: db, Rdb: rdb, Metrics: metrics.New()}, nil
}

// New creates the Fiber app for serverless deployments (the api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return router.CreateApp(cfg, deps)
}
