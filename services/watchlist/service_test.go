package watchlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamscout/internal/database"
	"streamscout/models"
)

func newTestService(t *testing.T) (*Service, int64) {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := database.NewUserRepository(db.Connection())
	user, err := users.CreateUser(context.Background(), "list@example.com", "hash", "Lister")
	require.NoError(t, err)

	return NewService(database.NewWatchlistRepository(db.Connection())), user.ID
}

func TestAddListRemove(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	poster := "https://image.tmdb.org/t/p/w500/matrix.jpg"
	item, err := svc.Add(ctx, userID, models.WatchlistUpsert{
		TitleID:   "603",
		Title:     "The Matrix",
		MediaType: "movie",
		PosterURL: &poster,
	})
	require.NoError(t, err)
	assert.Equal(t, "603", item.TitleID)

	present, err := svc.Contains(ctx, userID, "603")
	require.NoError(t, err)
	assert.True(t, present)

	items, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "The Matrix", items[0].Title)

	require.NoError(t, svc.Remove(ctx, userID, "603"))

	present, err = svc.Contains(ctx, userID, "603")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestAddValidatesRequiredFields(t *testing.T) {
	svc, userID := newTestService(t)

	for name, input := range map[string]models.WatchlistUpsert{
		"missing title id":   {Title: "The Matrix", MediaType: "movie"},
		"missing title":      {TitleID: "603", MediaType: "movie"},
		"missing media type": {TitleID: "603", Title: "The Matrix"},
		"whitespace only":    {TitleID: "  ", Title: " ", MediaType: " "},
	} {
		_, err := svc.Add(context.Background(), userID, input)
		assert.ErrorIs(t, err, ErrMissingFields, name)
	}
}

func TestAddSameTitleRefreshesInsteadOfDuplicating(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, models.WatchlistUpsert{TitleID: "603", Title: "The Matrix", MediaType: "movie"})
	require.NoError(t, err)

	updated, err := svc.Add(ctx, userID, models.WatchlistUpsert{TitleID: "603", Title: "The Matrix (1999)", MediaType: "movie"})
	require.NoError(t, err)
	assert.Equal(t, "The Matrix (1999)", updated.Title)

	items, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "The Matrix (1999)", items[0].Title)
}

func TestRemoveMissingEntry(t *testing.T) {
	svc, userID := newTestService(t)
	err := svc.Remove(context.Background(), userID, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEmptyIsNonNil(t *testing.T) {
	svc, userID := newTestService(t)
	items, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
