// Package testdb opens isolated, migrated databases for tests.
package testdb

import (
	"fmt"
	"testing"

	"taskapp/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a fresh in-memory sqlite database with the schema applied.
// It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: dsn, Silent: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.DriverSQLite))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
