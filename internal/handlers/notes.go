package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/services"
	pkghttp "github.com/catatan-app/catatan/pkg/http"
)

// NoteServiceInterface defines the interface for note business logic
type NoteServiceInterface interface {
	Create(ctx context.Context, ownerID string, input services.CreateInput) (*services.NoteView, error)
	Get(ctx context.Context, noteID, requesterID, suppliedPassword string) (*services.NoteView, error)
	VerifyPassword(ctx context.Context, noteID, requesterID, password string) (*services.NoteView, error)
	Update(ctx context.Context, noteID, requesterID string, input services.UpdateInput) (*services.NoteView, error)
	Delete(ctx context.Context, noteID, requesterID string) error
	ListPublic(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error)
	ListMine(ctx context.Context, requesterID, search string, limit, offset int) (*services.NoteList, error)
}

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{service: service}
}

// Request DTOs

// CreateNoteRequest represents the request body for note creation
type CreateNoteRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Content    string `json:"content" validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private protected"`
	Password   string `json:"password" validate:"omitempty,min=4"`
}

// UpdateNoteRequest represents the request body for note updates. The
// password fields are credentials accompanying a visibility change, not
// stored values.
type UpdateNoteRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content         *string `json:"content"`
	Visibility      *string `json:"visibility" validate:"omitempty,oneof=public private protected"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	OldPassword     string  `json:"old_password"`
	AccountPassword string  `json:"account_password"`
}

// VerifyNotePasswordRequest represents the request body for unlocking a
// protected note
type VerifyNotePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// Response DTOs

// NoteResponse is the requester-specific view of a note. Content is
// null when the note is locked for this requester.
type NoteResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Content       *string   `json:"content"`
	Visibility    string    `json:"visibility"`
	IsProtected   bool      `json:"is_protected"`
	IsLocked      bool      `json:"is_locked"`
	FavoriteCount int       `json:"favorite_count"`
	IsFavorited   bool      `json:"is_favorited"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NoteListResponse is a paginated collection of notes
type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
	Total int            `json:"total"`
	Limit int            `json:"limit"`
	Offset int           `json:"offset"`
}

func toNoteResponse(view *services.NoteView) NoteResponse {
	return NoteResponse{
		ID:            view.Note.ID,
		UserID:        view.Note.UserID,
		Title:         view.Note.Title,
		Content:       view.Content,
		Visibility:    view.Note.Visibility,
		IsProtected:   view.Note.IsProtected(),
		IsLocked:      view.Locked,
		FavoriteCount: view.FavoriteCount,
		IsFavorited:   view.IsFavorited,
		Version:       view.Note.Version,
		CreatedAt:     view.Note.CreatedAt,
		UpdatedAt:     view.Note.UpdatedAt,
	}
}

func toNoteListResponse(list *services.NoteList, limit, offset int) NoteListResponse {
	notes := make([]NoteResponse, 0, len(list.Notes))
	for _, view := range list.Notes {
		notes = append(notes, toNoteResponse(view))
	}
	return NoteListResponse{Notes: notes, Total: list.Total, Limit: limit, Offset: offset}
}

// parsePagination reads limit and offset query parameters with sane
// bounds.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

// Create handles note creation
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	view, err := h.service.Create(r.Context(), userID, services.CreateInput{
		Title:      req.Title,
		Content:    req.Content,
		Visibility: req.Visibility,
		Password:   req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(view))
}

// Get returns a single note as seen by the requester. A password query
// parameter may be supplied to unlock a protected note in the same
// request.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	requesterID := auth.UserIDFromContext(r)

	view, err := h.service.Get(r.Context(), noteID, requesterID, r.URL.Query().Get("password"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(view))
}

// VerifyPassword unlocks a protected note for this request
func (h *NoteHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	requesterID := auth.UserIDFromContext(r)

	var req VerifyNotePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	view, err := h.service.VerifyPassword(r.Context(), noteID, requesterID, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(view))
}

// Update handles note mutation, including visibility transitions
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	view, err := h.service.Update(r.Context(), noteID, userID, services.UpdateInput{
		Title:           req.Title,
		Content:         req.Content,
		Visibility:      req.Visibility,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		OldPassword:     req.OldPassword,
		AccountPassword: req.AccountPassword,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(view))
}

// Delete removes a note
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), noteID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPublic returns the public explore feed
func (h *NoteHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	requesterID := auth.UserIDFromContext(r)
	limit, offset := parsePagination(r)

	list, err := h.service.ListPublic(r.Context(), requesterID, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteListResponse(list, limit, offset))
}

// ListMine returns the authenticated user's notes
func (h *NoteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	limit, offset := parsePagination(r)

	list, err := h.service.ListMine(r.Context(), userID, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteListResponse(list, limit, offset))
}
