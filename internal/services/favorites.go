package services

import (
	"context"
	"errors"
	"fmt"

	"kinobot/internal/models"
	"kinobot/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrInvalidEntry reports an add attempt without a usable catalog id.
// It is rejected before the storage layer is touched.
var ErrInvalidEntry = errors.New("favorite entry has no catalog id")

// FavoritesService layers validation and logging over the favorites
// repository. Storage errors come back as plain failure results; callers
// render a notice and keep going.
type FavoritesService struct {
	repo   repository.FavoritesRepository
	logger *logrus.Logger
}

func NewFavoritesService(repo repository.FavoritesRepository, logger *logrus.Logger) *FavoritesService {
	return &FavoritesService{repo: repo, logger: logger}
}

// Add saves a snapshot of the catalog entry for the user. Re-adding an
// already saved entry replaces the snapshot, it never duplicates the row.
func (s *FavoritesService) Add(ctx context.Context, userID int64, movie *models.Movie) error {
	if movie == nil || movie.Id == 0 {
		return ErrInvalidEntry
	}

	entry := &models.FavoriteEntry{
		UserID:    userID,
		MovieID:   movie.Id,
		Title:     movie.Title(),
		MediaType: movie.Kind(),
		Snapshot:  *movie,
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"movie_id": movie.Id,
		}).Error("Failed to add favorite")
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"movie_id": movie.Id,
	}).Info("Favorite added")
	return nil
}

// Remove deletes the saved entry. Removing an entry that is not saved
// succeeds, so a stale "remove" button never shows the user an error.
func (s *FavoritesService) Remove(ctx context.Context, userID, movieID int64) error {
	if err := s.repo.Delete(ctx, userID, movieID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"movie_id": movieID,
		}).Error("Failed to remove favorite")
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (s *FavoritesService) List(ctx context.Context, userID int64, limit int) ([]models.FavoriteEntry, error) {
	entries, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to list favorites")
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return entries, nil
}

func (s *FavoritesService) Contains(ctx context.Context, userID, movieID int64) (bool, error) {
	return s.repo.Contains(ctx, userID, movieID)
}

// Count is display-only; on storage failure it logs and reports zero rather
// than failing the menu render.
func (s *FavoritesService) Count(ctx context.Context, userID int64) int {
	count, err := s.repo.Count(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to count favorites")
		return 0
	}
	return count
}
