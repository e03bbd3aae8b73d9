package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string // postgres DSN, or "sqlite:<path>" for local runs
	RedisURL            string
	JWTSecret           string
	JWTTTL              time.Duration
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	LogLevel            string
	AutoMigrate         bool
	CommuteDestination  string // fixed "to" location for travel logs
	RoutingAPIKey       string // openrouteservice key; travel calculation is disabled without it
	RoutingBaseURL      string
	RoutingRatePerSec   float64
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "5050")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("COMMUTE_DESTINATION", "Florida Atlantic University")
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("ORS_RATE_PER_SEC", 2)

	env := v.GetString("APP_ENV")

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" && env == "test" {
		dbURL = "sqlite::memory:"
	}

	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		DatabaseURL:         dbURL,
		RedisURL:            v.GetString("REDIS_URL"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTTTL:              time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		AutoMigrate:         v.GetBool("AUTO_MIGRATE"),
		CommuteDestination:  strings.TrimSpace(v.GetString("COMMUTE_DESTINATION")),
		RoutingAPIKey:       v.GetString("ORS_API_KEY"),
		RoutingBaseURL:      strings.TrimRight(v.GetString("ORS_BASE_URL"), "/"),
		RoutingRatePerSec:   v.GetFloat64("ORS_RATE_PER_SEC"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
