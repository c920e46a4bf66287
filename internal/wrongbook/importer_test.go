package wrongbook_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lexiboost/lexiboost/internal/repository/sqlite"
	"github.com/lexiboost/lexiboost/internal/testutil"
	"github.com/lexiboost/lexiboost/internal/wrongbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImporter(t *testing.T) (*wrongbook.Importer, int64, *counters) {
	t.Helper()
	database := testutil.OpenTestDB(t)

	words := sqlite.NewWordRepository(database.DB)
	progress := sqlite.NewProgressRepository(database.DB)
	users := sqlite.NewUserRepository(database.DB)

	user, err := users.Create(context.Background(), "learner")
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return wrongbook.NewImporter(words, progress, now), user.ID, &counters{progress: progress, userID: user.ID}
}

type counters struct {
	progress interface {
		WrongbookCount(ctx context.Context, userID int64) (int, error)
	}
	userID int64
}

func (c *counters) wrongbook(t *testing.T) int {
	t.Helper()
	n, err := c.progress.WrongbookCount(context.Background(), c.userID)
	require.NoError(t, err)
	return n
}

func TestImportCSV_HeaderAndBlanksSkipped(t *testing.T) {
	imp, userID, c := newImporter(t)

	csv := "word\napple\n\nbook\n  \nhappy\n"
	res, err := imp.ImportCSV(context.Background(), userID, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, c.wrongbook(t))
}

func TestImportCSV_DuplicatesSkipped(t *testing.T) {
	imp, userID, c := newImporter(t)

	res, err := imp.ImportCSV(context.Background(), userID, strings.NewReader("apple\nApple\nAPPLE\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, c.wrongbook(t))
}

func TestImportCSV_ReimportIsIdempotent(t *testing.T) {
	imp, userID, c := newImporter(t)

	_, err := imp.ImportCSV(context.Background(), userID, strings.NewReader("apple\nbook\n"))
	require.NoError(t, err)

	res, err := imp.ImportCSV(context.Background(), userID, strings.NewReader("apple\nbook\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, c.wrongbook(t))
}

func TestImportCSV_ExtraColumnsIgnored(t *testing.T) {
	imp, userID, c := newImporter(t)

	res, err := imp.ImportCSV(context.Background(), userID, strings.NewReader("apple,fruit,easy\nbook,object\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, c.wrongbook(t))
}
