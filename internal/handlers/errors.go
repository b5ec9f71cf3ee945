package handlers

import (
	"errors"
	"net/http"

	"github.com/catatan-app/catatan/internal/models"
	pkghttp "github.com/catatan-app/catatan/pkg/http"
)

// writeServiceError translates service layer errors into JSON
// responses. Credential and validation failures carry the offending
// field in error_type so clients can attribute them to a form input.
func writeServiceError(w http.ResponseWriter, err error) {
	var cerr *models.CredentialError
	if errors.As(err, &cerr) {
		pkghttp.WriteFieldError(w, http.StatusUnauthorized, "invalid_credentials",
			credentialMessage(cerr.Field), cerr.Field)
		return
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		pkghttp.WriteFieldError(w, http.StatusBadRequest, "validation_failed",
			verr.Message, verr.Field)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Invalid credentials")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "You do not have access to this resource")
	case errors.Is(err, models.ErrInvalidOrExpiredToken):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_or_expired_token",
			"Reset token is invalid or expired, start recovery again")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "An unexpected error occurred")
	}
}

func credentialMessage(field string) string {
	switch field {
	case models.FieldOldPassword:
		return "Current note password is incorrect"
	case models.FieldAccountPassword:
		return "Account password is incorrect"
	case models.FieldAnswer:
		return "Security answer is incorrect"
	default:
		return "Password is incorrect"
	}
}
