package models

import "time"

// FavoriteEntry is one saved catalog entry. At most one row exists per
// (UserID, MovieID); re-adding replaces the snapshot and resets AddedAt.
type FavoriteEntry struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	MovieID   int64     `json:"movie_id" db:"movie_id"`
	Title     string    `json:"title" db:"title"`
	MediaType MediaKind `json:"media_type" db:"media_type"`
	Snapshot  Movie     `json:"snapshot" db:"snapshot"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}
