package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/catatan-app/catatan/internal/database"
	"github.com/catatan-app/catatan/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewFavoriteRepository(db *database.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db, pool: db.Pool}
}

// Toggle flips the (user, note) favorite pair and reports the resulting
// state. Delete and insert run in one transaction so the pair cannot be
// left half-toggled; a racing insert is absorbed by the unique
// constraint.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, noteID string) (bool, error) {
	var favorited bool

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		deleteQuery := `DELETE FROM favorites WHERE user_id = $1 AND note_id = $2`

		result, err := tx.Exec(ctx, deleteQuery, userID, noteID)
		if err != nil {
			return err
		}
		if result.RowsAffected() > 0 {
			favorited = false
			return nil
		}

		insertQuery := `
			INSERT INTO favorites (id, user_id, note_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, note_id) DO NOTHING
		`

		if _, err := tx.Exec(ctx, insertQuery, uuid.New().String(), userID, noteID, time.Now()); err != nil {
			return err
		}

		favorited = true
		return nil
	})
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return favorited, nil
}

func (r *FavoriteRepository) IsFavorited(ctx context.Context, userID, noteID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND note_id = $2)`

	var favorited bool
	if err := r.pool.QueryRow(ctx, query, userID, noteID).Scan(&favorited); err != nil {
		return false, database.MapPostgresError(err)
	}

	return favorited, nil
}

func (r *FavoriteRepository) CountByNote(ctx context.Context, noteID string) (int, error) {
	query := `SELECT COUNT(*) FROM favorites WHERE note_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, noteID).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}

	return count, nil
}

// ListNotesByUser returns the notes a user has favorited, newest
// favorite first, plus the total favorite count for pagination.
func (r *FavoriteRepository) ListNotesByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Note, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM favorites WHERE user_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	query := `
		SELECT n.id, n.user_id, n.title, n.content, n.visibility, n.password_hash, n.version, n.created_at, n.updated_at
		FROM favorites f
		JOIN notes n ON n.id = f.note_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query favorited notes: %w", err)
	}

	notes, err := scanNoteRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}
