package database

import (
	"strings"

	"ecocommute-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Open opens a GORM DB from DSN. A "sqlite:" prefix selects the pure-Go SQLite driver
// (local runs and tests); anything else is treated as a Postgres URL.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers such as PgBouncer.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if strings.HasPrefix(dsn, sqlitePrefix) {
		db, err := gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix)), cfg)
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; serialising on one connection also keeps
		// in-memory databases shared across the pool.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), cfg)
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.Company{},
		&domain.User{},
		&domain.Trade{},
		&domain.TradeRequest{},
		&domain.TradeEvent{},
		&domain.TravelLog{},
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Pinger adapts a GORM handle to the health check's Ping interface.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
