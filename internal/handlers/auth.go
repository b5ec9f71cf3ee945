package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/models"
	"github.com/catatan-app/catatan/internal/services"
	pkghttp "github.com/catatan-app/catatan/pkg/http"
)

// AuthServiceInterface defines the interface for account business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update services.ProfileUpdate) (*models.User, error)
}

// AuthHandler handles registration, login and profile HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username         string `json:"username" validate:"required,min=3,max=32"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	SecurityQuestion string `json:"security_question" validate:"omitempty,min=4,max=200"`
	SecurityAnswer   string `json:"security_answer" validate:"omitempty,min=1,max=200"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Username         *string `json:"username" validate:"omitempty,min=3,max=32"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Avatar           *string `json:"avatar" validate:"omitempty,url"`
	Password         *string `json:"password" validate:"omitempty,min=6"`
	SecurityQuestion *string `json:"security_question" validate:"omitempty,min=4,max=200"`
	SecurityAnswer   *string `json:"security_answer" validate:"omitempty,min=1,max=200"`
}

// Response DTOs

// UserResponse is the public view of an account. Hashes never leave
// the service.
type UserResponse struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	Avatar              *string   `json:"avatar"`
	HasSecurityQuestion bool      `json:"has_security_question"`
	CreatedAt           time.Time `json:"created_at"`
}

// AuthResponse is the response body for register and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                  user.ID,
		Username:            user.Username,
		Email:               user.Email,
		Avatar:              user.Avatar,
		HasSecurityQuestion: user.HasSecurityQuestion(),
		CreatedAt:           user.CreatedAt,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: resp.Token, User: toUserResponse(resp.User)})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: resp.Token, User: toUserResponse(resp.User)})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile applies profile changes for the authenticated user
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Username:         req.Username,
		Email:            req.Email,
		Avatar:           req.Avatar,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// writeJSON writes a JSON response body with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
