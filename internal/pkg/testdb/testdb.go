// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"testing"

	"ecocommute-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a fresh, fully migrated in-memory database closed at test cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
