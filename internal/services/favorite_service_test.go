package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/catatan-app/catatan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_Toggle(t *testing.T) {
	favorited := false
	notes := &MockNoteRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Note, error) {
			return &models.Note{ID: id, UserID: "owner1", Visibility: models.VisibilityPublic}, nil
		},
	}
	favorites := &MockFavoriteRepository{
		ToggleFunc: func(ctx context.Context, userID, noteID string) (bool, error) {
			favorited = !favorited
			return favorited, nil
		},
		CountByNoteFunc: func(ctx context.Context, noteID string) (int, error) {
			if favorited {
				return 1, nil
			}
			return 0, nil
		},
	}

	svc := NewFavoriteService(favorites, notes, slog.Default())

	result, err := svc.Toggle(context.Background(), "fan", "note1")
	require.NoError(t, err)
	assert.True(t, result.Favorited)
	assert.Equal(t, 1, result.FavoriteCount)

	result, err = svc.Toggle(context.Background(), "fan", "note1")
	require.NoError(t, err)
	assert.False(t, result.Favorited)
	assert.Equal(t, 0, result.FavoriteCount)
}

func TestFavoriteService_Toggle_PrivateNoteHidden(t *testing.T) {
	notes := &MockNoteRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Note, error) {
			return &models.Note{ID: id, UserID: "owner1", Visibility: models.VisibilityPrivate}, nil
		},
	}

	svc := NewFavoriteService(&MockFavoriteRepository{}, notes, slog.Default())

	_, err := svc.Toggle(context.Background(), "stranger", "note1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFavoriteService_Toggle_ProtectedNoteAllowed(t *testing.T) {
	hash := "somehash"
	notes := &MockNoteRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Note, error) {
			return &models.Note{ID: id, UserID: "owner1", Visibility: models.VisibilityProtected, PasswordHash: &hash}, nil
		},
	}
	favorites := &MockFavoriteRepository{
		ToggleFunc: func(ctx context.Context, userID, noteID string) (bool, error) {
			return true, nil
		},
	}

	svc := NewFavoriteService(favorites, notes, slog.Default())

	// Favoriting a protected note needs no password; only content
	// reads are gated.
	result, err := svc.Toggle(context.Background(), "fan", "note1")
	require.NoError(t, err)
	assert.True(t, result.Favorited)
}

func TestFavoriteService_ListMine_FiltersAndLocks(t *testing.T) {
	hash := "somehash"
	favorites := &MockFavoriteRepository{
		ListNotesByUserFunc: func(ctx context.Context, userID string, limit, offset int) ([]*models.Note, int, error) {
			return []*models.Note{
				{ID: "pub", UserID: "owner1", Content: "visible", Visibility: models.VisibilityPublic},
				{ID: "prot", UserID: "owner1", Content: "gated", Visibility: models.VisibilityProtected, PasswordHash: &hash},
				{ID: "priv", UserID: "owner1", Content: "gone", Visibility: models.VisibilityPrivate},
				{ID: "mine", UserID: "fan", Content: "own diary", Visibility: models.VisibilityPrivate},
			}, 4, nil
		},
	}

	svc := NewFavoriteService(favorites, &MockNoteRepository{}, slog.Default())

	list, err := svc.ListMine(context.Background(), "fan", 20, 0)

	require.NoError(t, err)
	require.Len(t, list.Notes, 3)
	assert.Equal(t, 3, list.Total)

	assert.Equal(t, "pub", list.Notes[0].Note.ID)
	require.NotNil(t, list.Notes[0].Content)

	assert.Equal(t, "prot", list.Notes[1].Note.ID)
	assert.True(t, list.Notes[1].Locked)
	assert.Nil(t, list.Notes[1].Content)

	// The requester's own private note stays listed.
	assert.Equal(t, "mine", list.Notes[2].Note.ID)
	require.NotNil(t, list.Notes[2].Content)
}
