package testutil

import (
	"path/filepath"
	"testing"

	"github.com/lexiboost/lexiboost/internal/db"
	"github.com/stretchr/testify/require"
)

// OpenTestDB opens a fully migrated database in a per-test temp directory.
// Cleanup closes it when the test ends.
func OpenTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}
