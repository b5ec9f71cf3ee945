package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/models"
	pkgauth "github.com/catatan-app/catatan/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// AuthService handles registration, login and profile management
type AuthService struct {
	repo   UserRepository
	tm     *auth.TokenManager
	logger *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tm *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		tm:     tm,
		logger: logger,
	}
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput carries the fields accepted at registration. The
// security question and answer are optional; without them the account
// cannot use security-question recovery.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

// Register creates a new user account and returns a session token
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" {
		return nil, models.NewValidationError("username", "username is required")
	}
	if email == "" {
		return nil, models.NewValidationError("email", "email is required")
	}
	if len(input.Password) < pkgauth.MinPasswordLen {
		return nil, models.NewValidationError(models.FieldPassword,
			fmt.Sprintf("password must be at least %d characters", pkgauth.MinPasswordLen))
	}
	// A question without an answer (or vice versa) is a half-configured
	// recovery channel; reject it up front.
	question := strings.TrimSpace(input.SecurityQuestion)
	answer := strings.TrimSpace(input.SecurityAnswer)
	if (question == "") != (answer == "") {
		return nil, models.NewValidationError("security_question", "security question and answer must be set together")
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		s.logger.Info("registration failed: username taken")
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logger.Info("registration failed: email taken")
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if question != "" {
		answerHash, err := pkgauth.HashSecurityAnswer(answer)
		if err != nil {
			s.logger.Error("failed to hash security answer", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		user.SecurityQuestion = &question
		user.SecurityAnswerHash = &answerHash
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateToken(createdUser.ID, createdUser.Email)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("user_id", createdUser.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))

	return &AuthResponse{Token: token, User: createdUser}, nil
}

// Login authenticates a user and returns a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		return nil, models.ErrUnauthorized
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same response as a wrong password; no account enumeration
			s.logger.Info("login failed: invalid credentials")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrUnauthorized
	}

	token, err := s.tm.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &AuthResponse{Token: token, User: user}, nil
}

// GetProfile retrieves the authenticated user's account
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ProfileUpdate carries optional profile changes; nil means unchanged.
type ProfileUpdate struct {
	Username         *string
	Email            *string
	Avatar           *string
	Password         *string
	SecurityQuestion *string
	SecurityAnswer   *string
}

// UpdateProfile applies profile changes for the authenticated user
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.Password != nil && *update.Password != "" && len(*update.Password) < pkgauth.MinPasswordLen {
		return nil, models.NewValidationError(models.FieldPassword,
			fmt.Sprintf("password must be at least %d characters", pkgauth.MinPasswordLen))
	}

	if update.Username != nil {
		newUsername := strings.TrimSpace(*update.Username)
		if newUsername != "" && newUsername != user.Username {
			if _, err := s.repo.GetByUsername(ctx, newUsername); err == nil {
				return nil, models.ErrConflict
			} else if !errors.Is(err, models.ErrNotFound) {
				s.logger.Error("failed to check username", slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
			user.Username = newUsername
		}
	}

	if update.Email != nil {
		newEmail := strings.ToLower(strings.TrimSpace(*update.Email))
		if newEmail != "" && newEmail != user.Email {
			if _, err := s.repo.GetByEmail(ctx, newEmail); err == nil {
				return nil, models.ErrConflict
			} else if !errors.Is(err, models.ErrNotFound) {
				s.logger.Error("failed to check email", slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
			user.Email = newEmail
		}
	}

	if update.Avatar != nil {
		user.Avatar = update.Avatar
	}

	if update.SecurityQuestion != nil || update.SecurityAnswer != nil {
		// The pair is replaced together so the stored answer always
		// belongs to the stored question.
		if update.SecurityQuestion == nil || update.SecurityAnswer == nil {
			return nil, models.NewValidationError("security_question", "security question and answer must be updated together")
		}
		question := strings.TrimSpace(*update.SecurityQuestion)
		if question == "" {
			return nil, models.NewValidationError("security_question", "security question cannot be empty")
		}
		answerHash, err := pkgauth.HashSecurityAnswer(*update.SecurityAnswer)
		if err != nil {
			return nil, models.NewValidationError(models.FieldAnswer, "security answer cannot be empty")
		}
		user.SecurityQuestion = &question
		user.SecurityAnswerHash = &answerHash
	}

	updatedUser, err := s.repo.Update(ctx, userID, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.Password != nil && *update.Password != "" {
		hashedPassword, err := pkgauth.HashPassword(*update.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if err := s.repo.UpdatePasswordHash(ctx, userID, hashedPassword); err != nil {
			s.logger.Error("failed to update password", slog.String("user_id", userID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	s.logger.Info("profile updated", slog.String("user_id", userID))

	return updatedUser, nil
}
