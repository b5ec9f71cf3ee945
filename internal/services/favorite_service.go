package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/catatan-app/catatan/internal/models"
)

// FavoriteService handles favorite business logic
type FavoriteService struct {
	favorites FavoriteRepository
	notes     NoteRepository
	logger    *slog.Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favorites FavoriteRepository, notes NoteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		notes:     notes,
		logger:    logger,
	}
}

// ToggleResult reports the post-toggle state of a favorite.
type ToggleResult struct {
	Favorited     bool
	FavoriteCount int
}

// Toggle flips the requester's favorite on a note. Private notes owned
// by someone else are reported as missing rather than forbidden.
func (s *FavoriteService) Toggle(ctx context.Context, userID, noteID string) (*ToggleResult, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get note", slog.String("note_id", noteID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if note.Visibility == models.VisibilityPrivate && !note.IsOwnedBy(userID) {
		return nil, models.ErrNotFound
	}

	favorited, err := s.favorites.Toggle(ctx, userID, noteID)
	if err != nil {
		s.logger.Error("failed to toggle favorite",
			slog.String("note_id", noteID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	count, err := s.favorites.CountByNote(ctx, noteID)
	if err != nil {
		s.logger.Error("failed to count favorites", slog.String("note_id", noteID), slog.Any("error", err))
		count = 0
	}

	return &ToggleResult{Favorited: favorited, FavoriteCount: count}, nil
}

// ListMine returns the requester's favorited notes, newest favorite
// first. Notes that have since gone private for the requester are
// filtered out; protected ones appear locked.
func (s *FavoriteService) ListMine(ctx context.Context, userID string, limit, offset int) (*NoteList, error) {
	notes, total, err := s.favorites.ListNotesByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list favorites", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	views := make([]*NoteView, 0, len(notes))
	for _, note := range notes {
		if note.Visibility == models.VisibilityPrivate && !note.IsOwnedBy(userID) {
			total--
			continue
		}
		rv := requesterView{userID: userID, preview: true}
		if note.IsProtected() && !note.IsOwnedBy(userID) {
			rv.locked = true
		} else {
			rv.contentVisible = true
		}
		views = append(views, buildNoteView(ctx, s.favorites, note, rv))
	}

	return &NoteList{Notes: views, Total: total}, nil
}
