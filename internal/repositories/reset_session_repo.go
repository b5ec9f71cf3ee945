package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/catatan-app/catatan/internal/database"
	"github.com/catatan-app/catatan/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetSessionRepository stores recovery-protocol state. One live
// session per email; stage transitions are single-statement
// compare-and-sets so concurrent verifications cannot both advance the
// same session.
type ResetSessionRepository struct {
	pool *pgxpool.Pool
}

func NewResetSessionRepository(db *database.DB) *ResetSessionRepository {
	return &ResetSessionRepository{pool: db.Pool}
}

const resetSessionColumns = "id, user_id, email, stage, token_hash, expires_at, created_at"

func scanResetSessionRow(scanner rowScanner) (*models.ResetSession, error) {
	var session models.ResetSession

	err := scanner.Scan(
		&session.ID, &session.UserID, &session.Email, &session.Stage,
		&session.TokenHash, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &session, nil
}

// Start creates a fresh awaiting_answer session for the email,
// replacing any prior session (a re-initiated recovery always restarts
// the protocol and voids earlier progress, including minted tokens).
func (r *ResetSessionRepository) Start(ctx context.Context, userID, email string, ttl time.Duration) (*models.ResetSession, error) {
	now := time.Now()

	query := `
		INSERT INTO reset_sessions (id, user_id, email, stage, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, 'awaiting_answer', NULL, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET id = EXCLUDED.id, user_id = EXCLUDED.user_id, stage = 'awaiting_answer',
		    token_hash = NULL, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
		RETURNING ` + resetSessionColumns

	return scanResetSessionRow(r.pool.QueryRow(ctx, query,
		uuid.New().String(), userID, email, now.Add(ttl), now,
	))
}

func (r *ResetSessionRepository) GetByEmail(ctx context.Context, email string) (*models.ResetSession, error) {
	query := `SELECT ` + resetSessionColumns + ` FROM reset_sessions WHERE email = $1`

	return scanResetSessionRow(r.pool.QueryRow(ctx, query, email))
}

// AdvanceToVerified moves the email's session from awaiting_answer to
// verified and binds the token hash, atomically. Only one of any number
// of concurrent callers can win the compare-and-set; the rest see
// ErrNotFound because the row no longer matches the awaiting_answer
// predicate.
func (r *ResetSessionRepository) AdvanceToVerified(ctx context.Context, email, tokenHash string) (*models.ResetSession, error) {
	query := `
		UPDATE reset_sessions
		SET stage = 'verified', token_hash = $2
		WHERE email = $1 AND stage = 'awaiting_answer' AND expires_at > NOW()
		RETURNING ` + resetSessionColumns

	return scanResetSessionRow(r.pool.QueryRow(ctx, query, email, tokenHash))
}

// Consume destroys the session holding the given token hash, returning
// it. The DELETE doubles as the single-use guarantee: a second call
// with the same token finds no row and gets ErrNotFound.
func (r *ResetSessionRepository) Consume(ctx context.Context, tokenHash string) (*models.ResetSession, error) {
	query := `
		DELETE FROM reset_sessions
		WHERE token_hash = $1 AND stage = 'verified' AND expires_at > NOW()
		RETURNING ` + resetSessionColumns

	return scanResetSessionRow(r.pool.QueryRow(ctx, query, tokenHash))
}

// DeleteExpired removes sessions past their bounded lifetime. Run from
// the background cleanup loop.
func (r *ResetSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM reset_sessions WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
