package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catatan-app/catatan/internal/database"
	"github.com/catatan-app/catatan/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(db *database.DB) *NoteRepository {
	return &NoteRepository{pool: db.Pool}
}

const noteColumns = "id, user_id, title, content, visibility, password_hash, version, created_at, updated_at"

func scanNoteRow(scanner rowScanner) (*models.Note, error) {
	var note models.Note

	err := scanner.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content,
		&note.Visibility, &note.PasswordHash, &note.Version,
		&note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &note, nil
}

func scanNoteRows(rows pgx.Rows) ([]*models.Note, error) {
	defer rows.Close()

	notes := make([]*models.Note, 0)

	for rows.Next() {
		note, err := scanNoteRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}

	return notes, nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	return scanNoteRow(r.pool.QueryRow(ctx, query, id))
}

func (r *NoteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	note.ID = uuid.New().String()

	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now
	note.Version = 1

	query := `
		INSERT INTO notes (id, user_id, title, content, visibility, password_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + noteColumns

	return scanNoteRow(r.pool.QueryRow(ctx, query,
		note.ID, note.UserID, note.Title, note.Content,
		note.Visibility, note.PasswordHash, note.Version,
		note.CreatedAt, note.UpdatedAt,
	))
}

// Update commits a note read-modify-write under optimistic versioning:
// the row is only written if nobody else committed since the note was
// read. A version miss surfaces as ErrConflict so the caller can retry
// against fresh state. This keeps the visibility/password-hash pair
// consistent under concurrent editors.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	query := `
		UPDATE notes
		SET title = $1, content = $2, visibility = $3, password_hash = $4, version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
		RETURNING ` + noteColumns

	updated, err := scanNoteRow(r.pool.QueryRow(ctx, query,
		note.Title, note.Content, note.Visibility, note.PasswordHash,
		time.Now(), note.ID, note.Version,
	))
	if errors.Is(err, models.ErrNotFound) {
		// Row exists but version moved, or the note is gone. Check which.
		if _, getErr := r.GetByID(ctx, note.ID); getErr == nil {
			return nil, models.ErrConflict
		}
		return nil, models.ErrNotFound
	}

	return updated, err
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM notes WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListPublic returns public notes newest first, optionally filtered by
// a case-insensitive title search, plus the total match count.
func (r *NoteRepository) ListPublic(ctx context.Context, search string, limit, offset int) ([]*models.Note, int, error) {
	pattern := "%" + search + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM notes WHERE visibility = 'public' AND title ILIKE $1`
	if err := r.pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE visibility = 'public' AND title ILIKE $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query public notes: %w", err)
	}

	notes, err := scanNoteRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

// ListByOwner returns all of a user's notes newest first, optionally
// filtered by a case-insensitive title search, plus the total count.
func (r *NoteRepository) ListByOwner(ctx context.Context, userID, search string, limit, offset int) ([]*models.Note, int, error) {
	pattern := "%" + search + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM notes WHERE user_id = $1 AND title ILIKE $2`
	if err := r.pool.QueryRow(ctx, countQuery, userID, pattern).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1 AND title ILIKE $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, userID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notes by owner: %w", err)
	}

	notes, err := scanNoteRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}
