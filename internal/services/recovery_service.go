package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/catatan-app/catatan/internal/models"
	pkgauth "github.com/catatan-app/catatan/pkg/auth"
)

// ResetSessionRepository defines the interface for reset session data access
type ResetSessionRepository interface {
	Start(ctx context.Context, userID, email string, ttl time.Duration) (*models.ResetSession, error)
	GetByEmail(ctx context.Context, email string) (*models.ResetSession, error)
	AdvanceToVerified(ctx context.Context, email, tokenHash string) (*models.ResetSession, error)
	Consume(ctx context.Context, tokenHash string) (*models.ResetSession, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// RecoveryService drives the three step security question recovery
// flow: initiate, verify answer, reset. Each step only advances on the
// exact prior state, so a replayed or out of order request fails
// without side effects.
type RecoveryService struct {
	users      UserRepository
	sessions   ResetSessionRepository
	email      EmailService
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewRecoveryService creates a new RecoveryService
func NewRecoveryService(users UserRepository, sessions ResetSessionRepository, email EmailService, sessionTTL time.Duration, logger *slog.Logger) *RecoveryService {
	return &RecoveryService{
		users:      users,
		sessions:   sessions,
		email:      email,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Initiate starts a recovery session for the account and returns its
// security question. An unknown email, or an account without a
// security question configured, reports not found.
func (s *RecoveryService) Initiate(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", models.NewValidationError("email", "email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		s.logger.Error("failed to look up user for recovery", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if !user.HasSecurityQuestion() {
		return "", models.ErrNotFound
	}

	// Restarts any previous session for this email, discarding its
	// stage and token.
	if _, err := s.sessions.Start(ctx, user.ID, email, s.sessionTTL); err != nil {
		s.logger.Error("failed to start reset session", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("recovery initiated", slog.String("user_id", user.ID))

	return *user.SecurityQuestion, nil
}

// VerifyAnswer checks the security answer for an active recovery
// session and, on success, mints the single use reset token. The
// session advances to verified atomically; a concurrent duplicate
// verification loses the race and fails.
func (s *RecoveryService) VerifyAnswer(ctx context.Context, email, answer string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	session, err := s.sessions.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to get reset session", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if session.IsExpired() || !session.IsAwaitingAnswer() {
		return "", models.ErrInvalidOrExpiredToken
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to get user for recovery", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if user.SecurityAnswerHash == nil || pkgauth.CompareSecurityAnswer(*user.SecurityAnswerHash, answer) != nil {
		s.logger.Warn("recovery answer rejected", slog.String("user_id", user.ID))
		return "", models.NewCredentialError(models.FieldAnswer)
	}

	plainToken, tokenHash, err := pkgauth.GenerateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if _, err := s.sessions.AdvanceToVerified(ctx, email, tokenHash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Lost the race to another verification, or the session
			// expired between the read and the update.
			return "", models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to advance reset session", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("recovery answer verified", slog.String("user_id", user.ID))

	return plainToken, nil
}

// Reset consumes a verified reset token and replaces the account
// password. The new password is validated before the token is spent,
// so a rejected password leaves the token usable.
func (s *RecoveryService) Reset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if token == "" {
		return models.ErrInvalidOrExpiredToken
	}
	if len(newPassword) < pkgauth.MinPasswordLen {
		return models.NewValidationError(models.FieldPassword,
			fmt.Sprintf("password must be at least %d characters", pkgauth.MinPasswordLen))
	}
	if newPassword != confirmPassword {
		return models.NewValidationError(models.FieldConfirmPassword, "passwords do not match")
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	session, err := s.sessions.Consume(ctx, pkgauth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to consume reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePasswordHash(ctx, session.UserID, hash); err != nil {
		// The token is already burned at this point. The user must
		// start the flow over rather than retry with a stale token.
		s.logger.Error("failed to update password after token consumption",
			slog.String("user_id", session.UserID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed", slog.String("user_id", session.UserID))

	if err := s.email.SendPasswordChangedEmail(ctx, session.Email, time.Now()); err != nil {
		s.logger.Warn("failed to send password changed email",
			slog.String("user_id", session.UserID),
			slog.Any("error", err))
	}

	return nil
}

// PurgeExpired removes reset sessions past their deadline. Called by
// the background cleanup loop.
func (s *RecoveryService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
