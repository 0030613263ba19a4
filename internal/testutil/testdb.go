package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/linapoint/resortagents/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB returns a freshly migrated resort database private to t.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "resort.db"))
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sqlx.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
