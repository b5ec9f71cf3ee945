package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/services"
	pkghttp "github.com/catatan-app/catatan/pkg/http"
)

// FavoriteServiceInterface defines the interface for favorite business logic
type FavoriteServiceInterface interface {
	Toggle(ctx context.Context, userID, noteID string) (*services.ToggleResult, error)
	ListMine(ctx context.Context, userID string, limit, offset int) (*services.NoteList, error)
}

// FavoriteHandler handles favorite HTTP requests
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// ToggleResponse reports the post-toggle favorite state
type ToggleResponse struct {
	Favorited     bool `json:"favorited"`
	FavoriteCount int  `json:"favorite_count"`
}

// Toggle flips the requester's favorite on a note
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID := chi.URLParam(r, "noteID")

	result, err := h.service.Toggle(r.Context(), userID, noteID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{
		Favorited:     result.Favorited,
		FavoriteCount: result.FavoriteCount,
	})
}

// ListMine returns the requester's favorited notes
func (h *FavoriteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	limit, offset := parsePagination(r)

	list, err := h.service.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteListResponse(list, limit, offset))
}
