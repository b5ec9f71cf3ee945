package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/handlers"
	"github.com/catatan-app/catatan/internal/middleware"
)

// Config carries per-route-group settings
type Config struct {
	AuthRateLimit     middleware.RateLimitConfig
	RecoveryRateLimit middleware.RateLimitConfig
}

// DefaultConfig returns the production route settings
func DefaultConfig() Config {
	return Config{
		AuthRateLimit:     middleware.DefaultAuthRateLimit(),
		RecoveryRateLimit: middleware.DefaultRecoveryRateLimit(),
	}
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	cfg Config,
	authHandler *handlers.AuthHandler,
	recoveryHandler *handlers.RecoveryHandler,
	noteHandler *handlers.NoteHandler,
	favoriteHandler *handlers.FavoriteHandler,
	tokenManager *auth.TokenManager,
) {
	authLimit := middleware.RateLimitByIP(cfg.AuthRateLimit)
	recoveryLimit := middleware.RateLimitByIP(cfg.RecoveryRateLimit)

	// Credential endpoints, rate limited per client IP
	router.With(authLimit).Post("/auth/register", authHandler.Register)
	router.With(authLimit).Post("/auth/login", authHandler.Login)

	// Recovery flow. Each step is a guess at a secret, so the limit is
	// tighter than the login limit.
	router.With(recoveryLimit).Post("/auth/recover", recoveryHandler.Initiate)
	router.With(recoveryLimit).Post("/auth/recover/verify", recoveryHandler.VerifyAnswer)
	router.With(recoveryLimit).Post("/auth/recover/reset", recoveryHandler.Reset)

	// Public note reads. OptionalAuth lets owners and unlocked readers
	// through with identity attached, without requiring a token.
	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokenManager))

		r.Get("/notes", noteHandler.ListPublic)
		r.Get("/notes/{noteID}", noteHandler.Get)
		r.Post("/notes/{noteID}/verify-password", noteHandler.VerifyPassword)
	})

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokenManager))

		r.Get("/me", authHandler.Me)
		r.Put("/me", authHandler.UpdateProfile)

		r.Post("/notes", noteHandler.Create)
		r.Get("/me/notes", noteHandler.ListMine)
		r.Put("/notes/{noteID}", noteHandler.Update)
		r.Delete("/notes/{noteID}", noteHandler.Delete)

		r.Post("/notes/{noteID}/favorite", favoriteHandler.Toggle)
		r.Get("/me/favorites", favoriteHandler.ListMine)
	})
}
