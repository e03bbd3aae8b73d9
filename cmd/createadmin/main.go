// Command createadmin inserts the admin account. Registration refuses the admin role,
// so this is the only way to create one.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	authsvc "ecocommute-backend/internal/application/auth"
	"ecocommute-backend/internal/config"
	"ecocommute-backend/internal/infrastructure/database"
	"ecocommute-backend/internal/pkg/validation"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username (env ADMIN_USERNAME)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (env ADMIN_PASSWORD)")
	flag.Parse()

	if !validation.IsValidUsername(*username) {
		log.Fatal().Msg("a valid -username is required")
	}
	if !validation.IsValidPassword(*password) {
		log.Fatal().Msg("-password needs at least 8 characters with a letter and a digit")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database open")
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	u, err := (&authsvc.Service{DB: db}).CreateAdmin(ctx, *username, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("create admin")
	}
	log.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("admin created")
}
