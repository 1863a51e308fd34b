package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"kinobot/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoritesRepository interface {
	Upsert(ctx context.Context, entry *models.FavoriteEntry) error
	Delete(ctx context.Context, userID, movieID int64) error
	List(ctx context.Context, userID int64, limit int) ([]models.FavoriteEntry, error)
	Contains(ctx context.Context, userID, movieID int64) (bool, error)
	Count(ctx context.Context, userID int64) (int, error)
}

type favoritesRepository struct {
	db *pgxpool.Pool
}

func NewFavoritesRepository(db *pgxpool.Pool) FavoritesRepository {
	return &favoritesRepository{db: db}
}

// Upsert inserts or replaces the row for (user_id, movie_id). Re-adding an
// entry overwrites the snapshot and resets added_at, so the latest add wins.
// The single-statement write keeps concurrent upserts from tearing a row.
func (r *favoritesRepository) Upsert(ctx context.Context, entry *models.FavoriteEntry) error {
	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
	INSERT INTO favorites (user_id, movie_id, title, media_type, snapshot, added_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (user_id, movie_id) DO UPDATE
	SET title = EXCLUDED.title,
	    media_type = EXCLUDED.media_type,
	    snapshot = EXCLUDED.snapshot,
	    added_at = now()
	`

	_, err = r.db.Exec(ctx, query, entry.UserID, entry.MovieID, entry.Title, entry.MediaType, snapshot)
	if err != nil {
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

// Delete removes the row if it exists. Deleting a pair that was never added
// is not an error.
func (r *favoritesRepository) Delete(ctx context.Context, userID, movieID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2", userID, movieID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// List returns the user's favorites, most recently added first. A row whose
// snapshot no longer decodes is skipped instead of failing the whole listing.
func (r *favoritesRepository) List(ctx context.Context, userID int64, limit int) ([]models.FavoriteEntry, error) {
	query := `
	SELECT user_id, movie_id, title, media_type, snapshot, added_at
	FROM favorites
	WHERE user_id = $1
	ORDER BY added_at DESC
	LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var entries []models.FavoriteEntry
	for rows.Next() {
		var entry models.FavoriteEntry
		var snapshot []byte
		if err := rows.Scan(&entry.UserID, &entry.MovieID, &entry.Title, &entry.MediaType, &snapshot, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		if len(snapshot) > 0 {
			if err := json.Unmarshal(snapshot, &entry.Snapshot); err != nil {
				continue
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	return entries, nil
}

func (r *favoritesRepository) Contains(ctx context.Context, userID, movieID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND movie_id = $2)",
		userID, movieID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// Count is served by the (user_id, added_at) index, not a table scan.
func (r *favoritesRepository) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM favorites WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}
