package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "descry-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testReport(id string, createdAt time.Time) domain.Report {
	return domain.Report{
		ID:        id,
		Query:     "query for " + id,
		Body:      "# Report " + id,
		CreatedAt: createdAt,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	report := testReport("r1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, report.Query, got.Query)
	assert.Equal(t, report.Body, got.Body)
	assert.WithinDuration(t, report.CreatedAt, got.CreatedAt, time.Second)
}

func TestStore_SaveUpsert(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	report := testReport("r1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, report))

	report.Body = "# Revised"
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "# Revised", got.Body)

	reports, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestStore_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(ctx, testReport("old", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, testReport("new", base)))
	require.NoError(t, store.Save(ctx, testReport("mid", base.Add(-time.Hour))))

	reports, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "new", reports[0].ID)
	assert.Equal(t, "mid", reports[1].ID)
	assert.Equal(t, "old", reports[2].ID)
}

func TestStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testReport("r1", time.Now().UTC())))
	require.NoError(t, store.Delete(ctx, "r1"))

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "r1"), domain.ErrNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "descry-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	ctx := context.Background()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testReport("r1", time.Now().UTC())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(tempDir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
}
