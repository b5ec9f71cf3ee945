package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	pkghttp "github.com/catatan-app/catatan/pkg/http"
)

// RecoveryServiceInterface defines the interface for the password
// recovery flow
type RecoveryServiceInterface interface {
	Initiate(ctx context.Context, email string) (string, error)
	VerifyAnswer(ctx context.Context, email, answer string) (string, error)
	Reset(ctx context.Context, token, newPassword, confirmPassword string) error
}

// RecoveryHandler handles security question password recovery requests
type RecoveryHandler struct {
	service RecoveryServiceInterface
}

// NewRecoveryHandler creates a new RecoveryHandler
func NewRecoveryHandler(service RecoveryServiceInterface) *RecoveryHandler {
	return &RecoveryHandler{service: service}
}

// InitiateRequest represents the request body for starting recovery
type InitiateRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InitiateResponse carries the account's security question
type InitiateResponse struct {
	SecurityQuestion string `json:"security_question"`
}

// VerifyAnswerRequest represents the request body for the answer step
type VerifyAnswerRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Answer string `json:"answer" validate:"required"`
}

// VerifyAnswerResponse carries the single use reset token
type VerifyAnswerResponse struct {
	ResetToken string `json:"reset_token"`
}

// ResetRequest represents the request body for the final reset step
type ResetRequest struct {
	ResetToken      string `json:"reset_token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Initiate starts recovery and returns the account's security question
func (h *RecoveryHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	question, err := h.service.Initiate(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, InitiateResponse{SecurityQuestion: question})
}

// VerifyAnswer checks the security answer and mints the reset token
func (h *RecoveryHandler) VerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req VerifyAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	token, err := h.service.VerifyAnswer(r.Context(), req.Email, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyAnswerResponse{ResetToken: token})
}

// Reset consumes the reset token and sets the new password
func (h *RecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Reset(r.Context(), req.ResetToken, req.Password, req.ConfirmPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}
