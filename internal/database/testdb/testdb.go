// Package testdb opens throwaway SQLite databases for repository and service tests.
package testdb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/database/database"
	"github.com/festy23/teammatch/internal/database/pool"
)

// New opens a fresh in-memory database and migrates models into it.
// The pool is pinned to a single connection so every goroutine sees the same database.
func New(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(nil))
	require.NoError(t, err)
	require.NoError(t, pool.SetupConnectionPool(db, pool.SingleConnection()))

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
