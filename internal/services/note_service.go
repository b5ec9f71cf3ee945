package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/catatan-app/catatan/internal/access"
	"github.com/catatan-app/catatan/internal/models"
	pkgauth "github.com/catatan-app/catatan/pkg/auth"
)

// NoteRepository defines the interface for note data access
type NoteRepository interface {
	GetByID(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	Delete(ctx context.Context, id string) error
	ListPublic(ctx context.Context, search string, limit, offset int) ([]*models.Note, int, error)
	ListByOwner(ctx context.Context, userID, search string, limit, offset int) ([]*models.Note, int, error)
}

// FavoriteRepository defines the interface for favorite data access
type FavoriteRepository interface {
	Toggle(ctx context.Context, userID, noteID string) (bool, error)
	IsFavorited(ctx context.Context, userID, noteID string) (bool, error)
	CountByNote(ctx context.Context, noteID string) (int, error)
	ListNotesByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Note, int, error)
}

// NoteService handles note business logic. All read and mutation
// requests pass through the access evaluator before touching storage.
type NoteService struct {
	notes     NoteRepository
	favorites FavoriteRepository
	users     UserRepository
	logger    *slog.Logger
}

// NewNoteService creates a new NoteService
func NewNoteService(notes NoteRepository, favorites FavoriteRepository, users UserRepository, logger *slog.Logger) *NoteService {
	return &NoteService{
		notes:     notes,
		favorites: favorites,
		users:     users,
		logger:    logger,
	}
}

// NoteView is a note decorated with the requester-specific read
// outcome. Content is nil exactly when the note is locked for this
// requester.
type NoteView struct {
	Note          *models.Note
	Content       *string
	Locked        bool
	FavoriteCount int
	IsFavorited   bool
}

// CreateInput carries the fields accepted when creating a note.
type CreateInput struct {
	Title      string
	Content    string
	Visibility string
	Password   string
}

// Create stores a new note for ownerID
func (s *NoteService) Create(ctx context.Context, ownerID string, input CreateInput) (*NoteView, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)

	if title == "" || content == "" {
		return nil, models.NewValidationError("title", "title and content are required")
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !models.ValidVisibility(visibility) {
		return nil, models.NewValidationError("visibility", "must be one of: public, private, protected")
	}

	note := &models.Note{
		UserID:     ownerID,
		Title:      title,
		Content:    content,
		Visibility: visibility,
	}

	if visibility == models.VisibilityProtected {
		if len(input.Password) < pkgauth.MinNotePasswordLen {
			return nil, models.NewValidationError(models.FieldPassword,
				fmt.Sprintf("note password must be at least %d characters", pkgauth.MinNotePasswordLen))
		}
		hash, err := pkgauth.HashPassword(input.Password)
		if err != nil {
			s.logger.Error("failed to hash note password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		note.PasswordHash = &hash
	}

	created, err := s.notes.Create(ctx, note)
	if err != nil {
		s.logger.Error("failed to create note", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("note created",
		slog.String("note_id", created.ID),
		slog.String("user_id", ownerID),
		slog.String("visibility", created.Visibility))

	return s.buildView(ctx, created, requesterView{userID: ownerID, contentVisible: true}), nil
}

// Get evaluates a content-read request for requesterID (empty when
// anonymous), optionally carrying a submitted note password.
func (s *NoteService) Get(ctx context.Context, noteID, requesterID, suppliedPassword string) (*NoteView, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get note", slog.String("note_id", noteID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result, err := access.ReadNote(note, requesterID, suppliedPassword)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, note, requesterView{userID: requesterID, contentVisible: result.ContentVisible, locked: result.Locked}), nil
}

// VerifyPassword checks a submitted password against a protected note
// and returns the unlocked view on success.
func (s *NoteService) VerifyPassword(ctx context.Context, noteID, requesterID, password string) (*NoteView, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get note", slog.String("note_id", noteID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !note.IsProtected() {
		return nil, models.NewValidationError("visibility", "this note is not protected")
	}
	if password == "" {
		return nil, models.NewValidationError(models.FieldPassword, "password is required")
	}

	result, err := access.ReadNote(note, requesterID, password)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, note, requesterView{userID: requesterID, contentVisible: result.ContentVisible, locked: result.Locked}), nil
}

// UpdateInput mirrors access.Changes at the service boundary.
type UpdateInput struct {
	Title           *string
	Content         *string
	Visibility      *string
	Password        string
	ConfirmPassword string
	OldPassword     string
	AccountPassword string
}

// Update authorizes and applies a note mutation for requesterID. The
// read-modify-write commits under the note's version; a concurrent
// writer surfaces as ErrConflict.
func (s *NoteService) Update(ctx context.Context, noteID, requesterID string, input UpdateInput) (*NoteView, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get note", slog.String("note_id", noteID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrForbidden
		}
		s.logger.Error("failed to get requester", slog.String("user_id", requesterID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	decision, err := access.AuthorizeUpdate(note, requester, &access.Changes{
		Title:           input.Title,
		Content:         input.Content,
		Visibility:      input.Visibility,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		OldPassword:     input.OldPassword,
		AccountPassword: input.AccountPassword,
	})
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" {
			note.Title = title
		}
	}
	if input.Content != nil {
		if content := strings.TrimSpace(*input.Content); content != "" {
			note.Content = content
		}
	}
	note.Visibility = decision.Visibility
	note.PasswordHash = decision.PasswordHash

	updated, err := s.notes.Update(ctx, note)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update note", slog.String("note_id", noteID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("note updated",
		slog.String("note_id", noteID),
		slog.String("visibility", updated.Visibility))

	return s.buildView(ctx, updated, requesterView{userID: requesterID, contentVisible: true}), nil
}

// Delete removes a note; only the owner may do so.
func (s *NoteService) Delete(ctx context.Context, noteID, requesterID string) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get note", slog.String("note_id", noteID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !note.IsOwnedBy(requesterID) {
		return models.ErrForbidden
	}

	if err := s.notes.Delete(ctx, noteID); err != nil {
		s.logger.Error("failed to delete note", slog.String("note_id", noteID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("note deleted", slog.String("note_id", noteID), slog.String("user_id", requesterID))
	return nil
}

// NoteList is a paginated collection of note views.
type NoteList struct {
	Notes []*NoteView
	Total int
}

// ListPublic returns the explore feed: public notes with previewed
// content, newest first.
func (s *NoteService) ListPublic(ctx context.Context, requesterID, search string, limit, offset int) (*NoteList, error) {
	notes, total, err := s.notes.ListPublic(ctx, search, limit, offset)
	if err != nil {
		s.logger.Error("failed to list public notes", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return s.buildListViews(ctx, notes, total, requesterID), nil
}

// ListMine returns the requester's own notes with previewed content.
func (s *NoteService) ListMine(ctx context.Context, requesterID, search string, limit, offset int) (*NoteList, error) {
	notes, total, err := s.notes.ListByOwner(ctx, requesterID, search, limit, offset)
	if err != nil {
		s.logger.Error("failed to list notes", slog.String("user_id", requesterID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return s.buildListViews(ctx, notes, total, requesterID), nil
}

const previewLength = 100

type requesterView struct {
	userID         string
	contentVisible bool
	locked         bool
	preview        bool
}

// buildNoteView decorates a note with requester-specific read state and
// favorite bookkeeping. Favorite lookups are best effort; a failure
// degrades the counters, not the read.
func buildNoteView(ctx context.Context, favorites FavoriteRepository, note *models.Note, rv requesterView) *NoteView {
	view := &NoteView{Note: note, Locked: rv.locked}

	if rv.contentVisible {
		content := note.Content
		if rv.preview && len(content) > previewLength {
			content = content[:previewLength] + "..."
		}
		view.Content = &content
	}

	if count, err := favorites.CountByNote(ctx, note.ID); err == nil {
		view.FavoriteCount = count
	}
	if rv.userID != "" {
		if favorited, err := favorites.IsFavorited(ctx, rv.userID, note.ID); err == nil {
			view.IsFavorited = favorited
		}
	}

	return view
}

func (s *NoteService) buildView(ctx context.Context, note *models.Note, rv requesterView) *NoteView {
	return buildNoteView(ctx, s.favorites, note, rv)
}

// buildListViews applies list semantics: protected notes stay locked
// even for previews unless the requester owns them, and visible content
// is truncated to a preview.
func (s *NoteService) buildListViews(ctx context.Context, notes []*models.Note, total int, requesterID string) *NoteList {
	views := make([]*NoteView, 0, len(notes))
	for _, note := range notes {
		rv := requesterView{userID: requesterID, preview: true}
		if note.IsProtected() && !note.IsOwnedBy(requesterID) {
			rv.locked = true
		} else {
			rv.contentVisible = true
		}
		views = append(views, s.buildView(ctx, note, rv))
	}

	return &NoteList{Notes: views, Total: total}
}
