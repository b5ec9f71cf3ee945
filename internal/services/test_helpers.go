package services

import (
	"context"
	"time"

	"github.com/catatan-app/catatan/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc      func(ctx context.Context, username string) (*models.User, error)
	CreateFunc             func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc             func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordHashFunc func(ctx context.Context, id, passwordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockNoteRepository implements NoteRepository for testing
type MockNoteRepository struct {
	GetByIDFunc     func(ctx context.Context, id string) (*models.Note, error)
	CreateFunc      func(ctx context.Context, note *models.Note) (*models.Note, error)
	UpdateFunc      func(ctx context.Context, note *models.Note) (*models.Note, error)
	DeleteFunc      func(ctx context.Context, id string) error
	ListPublicFunc  func(ctx context.Context, search string, limit, offset int) ([]*models.Note, int, error)
	ListByOwnerFunc func(ctx context.Context, userID, search string, limit, offset int) ([]*models.Note, int, error)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, note)
	}
	return nil, models.ErrInternalServer
}

func (m *MockNoteRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, note)
	}
	return nil, models.ErrInternalServer
}

func (m *MockNoteRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockNoteRepository) ListPublic(ctx context.Context, search string, limit, offset int) ([]*models.Note, int, error) {
	if m.ListPublicFunc != nil {
		return m.ListPublicFunc(ctx, search, limit, offset)
	}
	return []*models.Note{}, 0, nil
}

func (m *MockNoteRepository) ListByOwner(ctx context.Context, userID, search string, limit, offset int) ([]*models.Note, int, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, userID, search, limit, offset)
	}
	return []*models.Note{}, 0, nil
}

// MockFavoriteRepository implements FavoriteRepository for testing
type MockFavoriteRepository struct {
	ToggleFunc          func(ctx context.Context, userID, noteID string) (bool, error)
	IsFavoritedFunc     func(ctx context.Context, userID, noteID string) (bool, error)
	CountByNoteFunc     func(ctx context.Context, noteID string) (int, error)
	ListNotesByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.Note, int, error)
}

func (m *MockFavoriteRepository) Toggle(ctx context.Context, userID, noteID string) (bool, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, userID, noteID)
	}
	return false, nil
}

func (m *MockFavoriteRepository) IsFavorited(ctx context.Context, userID, noteID string) (bool, error) {
	if m.IsFavoritedFunc != nil {
		return m.IsFavoritedFunc(ctx, userID, noteID)
	}
	return false, nil
}

func (m *MockFavoriteRepository) CountByNote(ctx context.Context, noteID string) (int, error) {
	if m.CountByNoteFunc != nil {
		return m.CountByNoteFunc(ctx, noteID)
	}
	return 0, nil
}

func (m *MockFavoriteRepository) ListNotesByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Note, int, error) {
	if m.ListNotesByUserFunc != nil {
		return m.ListNotesByUserFunc(ctx, userID, limit, offset)
	}
	return []*models.Note{}, 0, nil
}

// MockResetSessionRepository implements ResetSessionRepository for testing
type MockResetSessionRepository struct {
	StartFunc             func(ctx context.Context, userID, email string, ttl time.Duration) (*models.ResetSession, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.ResetSession, error)
	AdvanceToVerifiedFunc func(ctx context.Context, email, tokenHash string) (*models.ResetSession, error)
	ConsumeFunc           func(ctx context.Context, tokenHash string) (*models.ResetSession, error)
	DeleteExpiredFunc     func(ctx context.Context) (int64, error)
}

func (m *MockResetSessionRepository) Start(ctx context.Context, userID, email string, ttl time.Duration) (*models.ResetSession, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, userID, email, ttl)
	}
	return nil, models.ErrInternalServer
}

func (m *MockResetSessionRepository) GetByEmail(ctx context.Context, email string) (*models.ResetSession, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockResetSessionRepository) AdvanceToVerified(ctx context.Context, email, tokenHash string) (*models.ResetSession, error) {
	if m.AdvanceToVerifiedFunc != nil {
		return m.AdvanceToVerifiedFunc(ctx, email, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockResetSessionRepository) Consume(ctx context.Context, tokenHash string) (*models.ResetSession, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockResetSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendPasswordChangedEmailFunc func(ctx context.Context, email string, changedAt time.Time) error
}

func (m *MockEmailService) SendPasswordChangedEmail(ctx context.Context, email string, changedAt time.Time) error {
	if m.SendPasswordChangedEmailFunc != nil {
		return m.SendPasswordChangedEmailFunc(ctx, email, changedAt)
	}
	return nil
}
