package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catatan-app/catatan/internal/models"
	"github.com/catatan-app/catatan/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	service := &MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Token: "jwt-token",
				User:  &models.User{ID: "user123", Username: input.Username, Email: input.Email},
			}, nil
		},
	}
	handler := NewAuthHandler(service)

	req := jsonRequest(t, "POST", "/auth/register", map[string]string{
		"username": "budi",
		"email":    "budi@example.com",
		"password": "hunter22",
	})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, "budi", resp.User.Username)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{})

	req := httptest.NewRequest("POST", "/auth/register", nil)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{})

	req := jsonRequest(t, "POST", "/auth/register", map[string]string{"username": "budi"})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := NewAuthHandler(service)

	req := jsonRequest(t, "POST", "/auth/login", map[string]string{
		"email":    "budi@example.com",
		"password": "wrong",
	})
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Me_RequiresAuth(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{})

	req := httptest.NewRequest("GET", "/me", nil)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Me_ReturnsProfileWithoutSecrets(t *testing.T) {
	question := "What is your favorite color?"
	answerHash := "bcrypt-hash"
	service := &MockAuthService{
		GetProfileFunc: func(ctx context.Context, userID string) (*models.User, error) {
			return &models.User{
				ID:                 userID,
				Username:           "budi",
				Email:              "budi@example.com",
				PasswordHash:       "bcrypt-hash",
				SecurityQuestion:   &question,
				SecurityAnswerHash: &answerHash,
			}, nil
		},
	}
	handler := NewAuthHandler(service)

	req := asUser(httptest.NewRequest("GET", "/me", nil), "user123")
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "bcrypt-hash")
	assert.Contains(t, rec.Body.String(), `"has_security_question":true`)
}

func TestAuthHandler_UpdateProfile_FieldTaggedValidationError(t *testing.T) {
	service := &MockAuthService{
		UpdateProfileFunc: func(ctx context.Context, userID string, update services.ProfileUpdate) (*models.User, error) {
			return nil, models.NewValidationError(models.FieldPassword, "password must be at least 6 characters")
		},
	}
	handler := NewAuthHandler(service)

	req := asUser(jsonRequest(t, "PUT", "/me", map[string]string{"password": "abcdef"}), "user123")
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error_type":"password"`)
}
