package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/research-assistant/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "audit", "turns.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func TestNewStore(t *testing.T) {
	store := setupTestStore(t)

	assert.FileExists(t, store.Path())
	require.NoError(t, store.SQLDB().PingContext(context.Background()))

	// Reopening an existing file keeps the schema
	again, err := NewStore(context.Background(), store.Path(), zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}

func TestChatTurnRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := setupTestStore(t).NewRepositories().ChatTurns

	older := models.NewChatTurn("req-1", "what is charisma?", "openai", "gpt-4o-mini",
		[]string{"leadership-crisis-erbil", "charisma-leadership-determinant"})
	older.LatencyMs = 120
	older.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)

	newer := models.NewChatTurn("req-2", "hurricane katrina", "ollama", "llama3", nil)
	newer.MarkFailed(errors.New("provider timed out"))
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	turns, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, newer.ID, turns[0].ID)
	assert.Equal(t, models.ChatTurnStatusFailed, turns[0].Status)
	require.NotNil(t, turns[0].ErrorMessage)
	assert.Equal(t, "provider timed out", *turns[0].ErrorMessage)
	assert.Equal(t, []string{}, turns[0].CitationIDs)

	assert.Equal(t, older.ID, turns[1].ID)
	assert.Equal(t, "req-1", turns[1].RequestID)
	assert.Equal(t, "what is charisma?", turns[1].Query)
	assert.Equal(t, []string{"leadership-crisis-erbil", "charisma-leadership-determinant"}, turns[1].CitationIDs)
	assert.Equal(t, 120, turns[1].LatencyMs)
	assert.Nil(t, turns[1].ErrorMessage)
	assert.True(t, older.CreatedAt.Equal(turns[1].CreatedAt))

	limited, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer.ID, limited[0].ID)
}

func TestChatTurnRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := setupTestStore(t).NewRepositories().ChatTurns

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, models.NewChatTurn("ok", "q", "openai", "m", nil)))
	}
	failed := models.NewChatTurn("bad", "q", "openai", "m", nil)
	failed.MarkFailed(errors.New("boom"))
	require.NoError(t, repo.Create(ctx, failed))

	counts, err = repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[models.ChatTurnStatus]int{
		models.ChatTurnStatusCompleted: 3,
		models.ChatTurnStatusFailed:    1,
	}, counts)
}

func TestChatTurnRepository_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := setupTestStore(t).NewRepositories().ChatTurns

	turn := models.NewChatTurn("req", "q", "openai", "m", nil)
	require.NoError(t, repo.Create(ctx, turn))

	err := repo.Create(ctx, turn)
	assert.ErrorContains(t, err, "failed to insert chat turn")
}
