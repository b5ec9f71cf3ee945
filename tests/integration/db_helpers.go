package integration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/catatan-app/catatan/internal/database"
	"github.com/catatan-app/catatan/internal/models"
	pkgauth "github.com/catatan-app/catatan/pkg/auth"
)

// TestDB manages the PostgreSQL testcontainer and database handle
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	DB        *database.DB
}

// SetupTestDatabase starts a PostgreSQL container and runs the
// embedded migrations against it.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("catatan"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	db := database.NewFromPool(pool, logger)

	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{Container: container, Pool: pool, DB: db}, nil
}

// Teardown stops the container and closes the connection pool
func (t *TestDB) Teardown(ctx context.Context) error {
	if t.Pool != nil {
		t.Pool.Close()
	}
	if t.Container != nil {
		return t.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (t *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"reset_sessions",
		"favorites",
		"notes",
		"users",
	}

	for _, table := range tables {
		if _, err := t.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// SeedUser inserts a user with a hashed password and optional security
// question
func SeedUser(ctx context.Context, pool *pgxpool.Pool, username, email, password, question, answer string) (*models.User, error) {
	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var questionPtr, answerHashPtr *string
	if question != "" {
		answerHash, err := pkgauth.HashSecurityAnswer(answer)
		if err != nil {
			return nil, fmt.Errorf("failed to hash answer: %w", err)
		}
		questionPtr = &question
		answerHashPtr = &answerHash
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, security_question, security_answer_hash, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, username, email, password_hash, created_at, updated_at
	`

	var user models.User
	err = pool.QueryRow(ctx, query, username, email, hashedPassword, questionPtr, answerHashPtr).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	user.SecurityQuestion = questionPtr
	user.SecurityAnswerHash = answerHashPtr

	return &user, nil
}
