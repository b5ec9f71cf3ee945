package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/models"
	"github.com/catatan-app/catatan/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc      func(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error)
	LoginFunc         func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	GetProfileFunc    func(ctx context.Context, userID string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, update services.ProfileUpdate) (*models.User, error)
}

func (m *MockAuthService) Register(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, update services.ProfileUpdate) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, update)
	}
	return nil, models.ErrInternalServer
}

// MockRecoveryService implements RecoveryServiceInterface for testing
type MockRecoveryService struct {
	InitiateFunc     func(ctx context.Context, email string) (string, error)
	VerifyAnswerFunc func(ctx context.Context, email, answer string) (string, error)
	ResetFunc        func(ctx context.Context, token, newPassword, confirmPassword string) error
}

func (m *MockRecoveryService) Initiate(ctx context.Context, email string) (string, error) {
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, email)
	}
	return "", models.ErrNotFound
}

func (m *MockRecoveryService) VerifyAnswer(ctx context.Context, email, answer string) (string, error) {
	if m.VerifyAnswerFunc != nil {
		return m.VerifyAnswerFunc(ctx, email, answer)
	}
	return "", models.ErrInvalidOrExpiredToken
}

func (m *MockRecoveryService) Reset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, token, newPassword, confirmPassword)
	}
	return models.ErrInvalidOrExpiredToken
}

// MockNoteService implements NoteServiceInterface for testing
type MockNoteService struct {
	CreateFunc         func(ctx context.Context, ownerID string, input services.CreateInput) (*services.NoteView, error)
	GetFunc            func(ctx context.Context, noteID, requesterID, suppliedPassword string) (*services.NoteView, error)
	VerifyPasswordFunc func(ctx context.Context, noteID, requesterID, password string) (*services.NoteView, error)
	UpdateFunc         func(ctx context.Context, noteID, requesterID string, input services.UpdateInput) (*services.NoteView, error)
	DeleteFunc         func(ctx context.Context, noteID, requesterID string) error
	ListPublicFunc     func(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error)
	ListMineFunc       func(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error)
}

func (m *MockNoteService) Create(ctx context.Context, ownerID string, input services.CreateInput) (*services.NoteView, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockNoteService) Get(ctx context.Context, noteID, requesterID, suppliedPassword string) (*services.NoteView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, noteID, requesterID, suppliedPassword)
	}
	return nil, models.ErrNotFound
}

func (m *MockNoteService) VerifyPassword(ctx context.Context, noteID, requesterID, password string) (*services.NoteView, error) {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(ctx, noteID, requesterID, password)
	}
	return nil, models.ErrNotFound
}

func (m *MockNoteService) Update(ctx context.Context, noteID, requesterID string, input services.UpdateInput) (*services.NoteView, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, noteID, requesterID, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockNoteService) Delete(ctx context.Context, noteID, requesterID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, noteID, requesterID)
	}
	return models.ErrNotFound
}

func (m *MockNoteService) ListPublic(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error) {
	if m.ListPublicFunc != nil {
		return m.ListPublicFunc(ctx, requesterID, search, limit, offset)
	}
	return &services.NoteList{}, nil
}

func (m *MockNoteService) ListMine(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, requesterID, search, limit, offset)
	}
	return &services.NoteList{}, nil
}

// MockFavoriteService implements FavoriteServiceInterface for testing
type MockFavoriteService struct {
	ToggleFunc   func(ctx context.Context, userID, noteID string) (*services.ToggleResult, error)
	ListMineFunc func(ctx context.Context, userID string, limit, offset int) (*services.NoteList, error)
}

func (m *MockFavoriteService) Toggle(ctx context.Context, userID, noteID string) (*services.ToggleResult, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, userID, noteID)
	}
	return nil, models.ErrNotFound
}

func (m *MockFavoriteService) ListMine(ctx context.Context, userID string, limit, offset int) (*services.NoteList, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, userID, limit, offset)
	}
	return &services.NoteList{}, nil
}

// jsonRequest builds a request with a JSON body
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	return httptest.NewRequest(method, target, &buf)
}

// asUser attaches authenticated claims to the request, the way the
// auth middleware would.
func asUser(r *http.Request, userID string) *http.Request {
	claims := &models.TokenClaims{UserID: userID}
	return r.WithContext(context.WithValue(r.Context(), auth.UserContextKey, claims))
}

// withURLParam attaches a chi route parameter to the request
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
