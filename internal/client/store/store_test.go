package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/common"
)

func newRepo(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}

func TestStore_ThemePersistence(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	s := New(repo, nil)
	require.NoError(t, s.LoadTheme(ctx))
	assert.False(t, s.Get().DarkMode, "light by default")

	s.Dispatch(ctx, ThemeToggled{})
	v, err := repo.Get(ctx, common.ThemePreferenceKey)
	require.NoError(t, err)
	assert.Equal(t, "true", string(v))

	reloaded := New(repo, nil)
	require.NoError(t, reloaded.LoadTheme(ctx))
	assert.True(t, reloaded.Get().DarkMode)

	reloaded.Dispatch(ctx, ThemeSet{Dark: false})
	v, err = repo.Get(ctx, common.ThemePreferenceKey)
	require.NoError(t, err)
	assert.Equal(t, "false", string(v))
}

func TestStore_NonThemeActionsDoNotPersist(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := New(repo, nil)

	s.Dispatch(ctx, SessionChanged{Session: &models.Session{UserID: "u"}})
	s.Dispatch(ctx, SignedOut{})

	_, err := repo.Get(ctx, common.ThemePreferenceKey)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_SubscribeReceivesNewState(t *testing.T) {
	ctx := context.Background()
	s := New(newRepo(t), nil)

	var got []State
	unsub := s.Subscribe(func(st State) { got = append(got, st) })

	s.Dispatch(ctx, SessionChanged{Session: &models.Session{UserID: "u", Email: "a@b"}})
	s.Dispatch(ctx, QuotaUpdated{Quota: models.QuotaState{UsedBytes: 1, LimitBytes: 2}, TotalFiles: 1})
	unsub()
	s.Dispatch(ctx, SignedOut{})

	require.Len(t, got, 2)
	assert.True(t, got[0].SignedIn())
	assert.Equal(t, 1, got[1].TotalFiles)
	assert.False(t, s.Get().SignedIn())
}
