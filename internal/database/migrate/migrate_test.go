package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestGetMigrationsPath(t *testing.T) {
	t.Run("default path", func(t *testing.T) {
		t.Setenv("MIGRATIONS_PATH", "")
		assert.Equal(t, "migrations", GetMigrationsPath())
	})

	t.Run("custom path from env", func(t *testing.T) {
		t.Setenv("MIGRATIONS_PATH", "deploy/migrations")
		assert.Equal(t, "deploy/migrations", GetMigrationsPath())
	})
}

// createTestDB creates a test SQLite database connection.
func createTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestMigrate(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("nil database", func(t *testing.T) {
		err := Migrate(nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Setenv("MIGRATIONS_PATH", "/non/existent/path")

		err := Migrate(createTestDB(t), logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrations directory does not exist")
	})

	t.Run("non postgres connection", func(t *testing.T) {
		t.Setenv("MIGRATIONS_PATH", t.TempDir())

		err := Migrate(createTestDB(t), logger)
		require.Error(t, err)
		assert.True(t,
			strings.Contains(err.Error(), "failed to create postgres driver") ||
				strings.Contains(err.Error(), "failed to create migrate instance"),
			"unexpected error: %s", err.Error())
	})
}
