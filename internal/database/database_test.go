package database_test

import (
	"os"
	"testing"

	"taskapp/internal/database"
	"taskapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open(database.Config{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenMigrateClose_SQLite(t *testing.T) {
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:migrate_test?mode=memory&cache=shared",
		Silent: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.DriverSQLite))

	for _, model := range []any{&models.User{}, &models.UserToken{}, &models.Task{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "Email"))

	require.NoError(t, database.Close(db))
}

// Runs the goose migrations against a real postgres when
// TEST_DATABASE_URL points at a disposable database.
func TestMigrate_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Open(database.Config{Driver: database.DriverPostgres, DSN: dsn, Silent: true})
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Migrate(db, database.DriverPostgres))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("user_tokens"))
	assert.True(t, db.Migrator().HasTable("tasks"))
}
