package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/catatan-app/catatan/internal/auth"
	"github.com/catatan-app/catatan/internal/database"
	"github.com/catatan-app/catatan/internal/handlers"
	middlewareCustom "github.com/catatan-app/catatan/internal/middleware"
	"github.com/catatan-app/catatan/internal/repositories"
	"github.com/catatan-app/catatan/internal/routes"
	"github.com/catatan-app/catatan/internal/services"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To        string
	ChangedAt time.Time
}

// CapturingEmailService records password changed notifications for
// test assertions
type CapturingEmailService struct {
	mu   sync.Mutex
	Sent []SentEmail
}

func (c *CapturingEmailService) SendPasswordChangedEmail(ctx context.Context, email string, changedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, SentEmail{To: email, ChangedAt: changedAt})
	return nil
}

// LastEmail returns the most recent captured email, or nil
func (c *CapturingEmailService) LastEmail() *SentEmail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return nil
	}
	return &c.Sent[len(c.Sent)-1]
}

// TestServer wraps httptest.Server with the full application stack on
// a real database and a capturing email service.
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Email  *CapturingEmailService
}

const testJWTSecret = "integration-test-secret-32-chars!!!"

// NewTestServer wires repositories, services, handlers and routes the
// same way main does, with rate limits loose enough that scenario
// tests can replay the recovery flow freely.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo := repositories.NewUserRepository(db)
	noteRepo := repositories.NewNoteRepository(db)
	favoriteRepo := repositories.NewFavoriteRepository(db)
	resetSessionRepo := repositories.NewResetSessionRepository(db)

	tokenManager := auth.NewTokenManager(testJWTSecret, time.Hour)
	emailService := &CapturingEmailService{}

	authService := services.NewAuthService(userRepo, tokenManager, logger)
	noteService := services.NewNoteService(noteRepo, favoriteRepo, userRepo, logger)
	favoriteService := services.NewFavoriteService(favoriteRepo, noteRepo, logger)
	recoveryService := services.NewRecoveryService(userRepo, resetSessionRepo, emailService, 15*time.Minute, logger)

	authHandler := handlers.NewAuthHandler(authService)
	recoveryHandler := handlers.NewRecoveryHandler(recoveryService)
	noteHandler := handlers.NewNoteHandler(noteService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)

	routeConfig := routes.Config{
		AuthRateLimit:     middlewareCustom.RateLimitConfig{Requests: 1000, Window: time.Minute},
		RecoveryRateLimit: middlewareCustom.RateLimitConfig{Requests: 1000, Window: time.Minute},
	}
	routes.RegisterRoutes(router, routeConfig, authHandler, recoveryHandler, noteHandler, favoriteHandler, tokenManager)

	return &TestServer{
		Server: httptest.NewServer(router),
		DB:     db,
		Email:  emailService,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// DoJSON issues a JSON request against the test server. token may be
// empty for anonymous requests.
func (ts *TestServer) DoJSON(t testingT, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\nbody: %s", err, raw)
		}
	}

	return resp, decoded
}

// testingT is the subset of *testing.T the helpers need
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RegisterAndLogin creates an account through the API and returns the
// session token and user ID.
func (ts *TestServer) RegisterAndLogin(t testingT, username, email, password, question, answer string) (token, userID string) {
	t.Helper()

	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	if question != "" {
		body["security_question"] = question
		body["security_answer"] = answer
	}

	resp, decoded := ts.DoJSON(t, http.MethodPost, "/auth/register", "", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed with status %d: %v", resp.StatusCode, decoded)
	}

	token, _ = decoded["token"].(string)
	user, _ := decoded["user"].(map[string]any)
	userID, _ = user["id"].(string)
	if token == "" || userID == "" {
		t.Fatalf("register response missing token or user id: %v", decoded)
	}

	return token, userID
}

// CreateNote creates a note through the API and returns its ID
func (ts *TestServer) CreateNote(t testingT, token, title, content, visibility, password string) string {
	t.Helper()

	body := map[string]string{
		"title":      title,
		"content":    content,
		"visibility": visibility,
	}
	if password != "" {
		body["password"] = password
	}

	resp, decoded := ts.DoJSON(t, http.MethodPost, "/notes", token, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create note failed with status %d: %v", resp.StatusCode, decoded)
	}

	id, _ := decoded["id"].(string)
	if id == "" {
		t.Fatalf("create note response missing id: %v", decoded)
	}

	return id
}
