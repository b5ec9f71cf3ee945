package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catatan-app/catatan/internal/models"
	"github.com/catatan-app/catatan/internal/repositories"
)

func TestNoteRepository_ConcurrentUpdateConflicts(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.Pool, "writer", "writer@example.com", "password1", "", "")
	require.NoError(t, err)

	repo := repositories.NewNoteRepository(testDB.DB)

	created, err := repo.Create(ctx, &models.Note{
		UserID:     user.ID,
		Title:      "Draft",
		Content:    "v1",
		Visibility: models.VisibilityPrivate,
	})
	require.NoError(t, err)

	// Two editors read the same version
	first, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	first.Content = "first editor"
	updated, err := repo.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	// The stale write loses
	second.Content = "second editor"
	_, err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, models.ErrConflict)

	// Updating a deleted note is NotFound, not Conflict
	require.NoError(t, repo.Delete(ctx, created.ID))
	updated.Content = "ghost"
	_, err = repo.Update(ctx, updated)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetSessionRepository_SingleUseConsume(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.Pool, "wulan", "wulan@example.com", "password1",
		"What is your favorite color?", "Blue")
	require.NoError(t, err)

	repo := repositories.NewResetSessionRepository(testDB.DB)

	session, err := repo.Start(ctx, user.ID, user.Email, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, models.ResetStageAwaitingAnswer, session.Stage)
	assert.Nil(t, session.TokenHash)

	verified, err := repo.AdvanceToVerified(ctx, user.Email, "tokenhash1")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified())
	require.NotNil(t, verified.TokenHash)
	assert.Equal(t, "tokenhash1", *verified.TokenHash)

	// The compare-and-set only fires once
	_, err = repo.AdvanceToVerified(ctx, user.Email, "tokenhash2")
	assert.ErrorIs(t, err, models.ErrNotFound)

	consumed, err := repo.Consume(ctx, "tokenhash1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, consumed.UserID)

	// Consumed means gone
	_, err = repo.Consume(ctx, "tokenhash1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.GetByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetSessionRepository_StartReplacesSession(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.Pool, "wulan", "wulan@example.com", "password1",
		"What is your favorite color?", "Blue")
	require.NoError(t, err)

	repo := repositories.NewResetSessionRepository(testDB.DB)

	_, err = repo.Start(ctx, user.ID, user.Email, 15*time.Minute)
	require.NoError(t, err)
	_, err = repo.AdvanceToVerified(ctx, user.Email, "tokenhash1")
	require.NoError(t, err)

	// A restarted protocol voids the minted token
	restarted, err := repo.Start(ctx, user.ID, user.Email, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, models.ResetStageAwaitingAnswer, restarted.Stage)
	assert.Nil(t, restarted.TokenHash)

	_, err = repo.Consume(ctx, "tokenhash1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetSessionRepository_DeleteExpired(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.Pool, "wulan", "wulan@example.com", "password1",
		"What is your favorite color?", "Blue")
	require.NoError(t, err)

	repo := repositories.NewResetSessionRepository(testDB.DB)

	_, err = repo.Start(ctx, user.ID, user.Email, -time.Minute)
	require.NoError(t, err)

	// An expired session no longer advances
	_, err = repo.AdvanceToVerified(ctx, user.Email, "tokenhash1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestFavoriteRepository_ToggleAndCount(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	owner, err := SeedUser(ctx, testDB.Pool, "owner", "owner@example.com", "password1", "", "")
	require.NoError(t, err)
	reader, err := SeedUser(ctx, testDB.Pool, "reader", "reader@example.com", "password2", "", "")
	require.NoError(t, err)

	noteRepo := repositories.NewNoteRepository(testDB.DB)
	favRepo := repositories.NewFavoriteRepository(testDB.DB)

	note, err := noteRepo.Create(ctx, &models.Note{
		UserID:     owner.ID,
		Title:      "Popular",
		Content:    "body",
		Visibility: models.VisibilityPublic,
	})
	require.NoError(t, err)

	favorited, err := favRepo.Toggle(ctx, reader.ID, note.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	count, err := favRepo.CountByNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	favoritedNotes, total, err := favRepo.ListNotesByUser(ctx, reader.ID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, favoritedNotes, 1)
	assert.Equal(t, note.ID, favoritedNotes[0].ID)

	favorited, err = favRepo.Toggle(ctx, reader.ID, note.ID)
	require.NoError(t, err)
	assert.False(t, favorited)

	count, err = favRepo.CountByNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Deleting the note cascades to favorites
	_, err = favRepo.Toggle(ctx, reader.ID, note.ID)
	require.NoError(t, err)
	require.NoError(t, noteRepo.Delete(ctx, note.ID))

	count, err = favRepo.CountByNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
