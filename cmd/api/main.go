package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecocommute-backend/bootstrap"
	"ecocommute-backend/internal/config"
	"ecocommute-backend/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	setupLogger(cfg)

	deps, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	app, err := router.CreateApp(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		log.Info().Msgf("health check: http://localhost:%s/health/json", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if deps.Rdb != nil {
		_ = deps.Rdb.Close()
	}
	if sqlDB, err := deps.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
