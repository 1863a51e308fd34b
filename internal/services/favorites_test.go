package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"kinobot/internal/models"

	"github.com/sirupsen/logrus"
)

type stubRepo struct {
	upserts int
	err     error
}

func (r *stubRepo) Upsert(ctx context.Context, entry *models.FavoriteEntry) error {
	r.upserts++
	return r.err
}

func (r *stubRepo) Delete(ctx context.Context, userID, movieID int64) error { return r.err }

func (r *stubRepo) List(ctx context.Context, userID int64, limit int) ([]models.FavoriteEntry, error) {
	return nil, r.err
}

func (r *stubRepo) Contains(ctx context.Context, userID, movieID int64) (bool, error) {
	return false, r.err
}

func (r *stubRepo) Count(ctx context.Context, userID int64) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return 3, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAddRejectsEntryWithoutCatalogID(t *testing.T) {
	repo := &stubRepo{}
	svc := NewFavoritesService(repo, quietLogger())

	if err := svc.Add(context.Background(), 7, nil); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry for nil movie, got %v", err)
	}
	if err := svc.Add(context.Background(), 7, &models.Movie{Name: "No ID"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry for zero id, got %v", err)
	}
	if repo.upserts != 0 {
		t.Fatalf("invalid entries must be rejected before storage, got %d writes", repo.upserts)
	}
}

func TestAddFillsEntryFromSnapshot(t *testing.T) {
	repo := &stubRepo{}
	svc := NewFavoritesService(repo, quietLogger())

	movie := &models.Movie{Id: 301, AlternativeName: "The Matrix", Type: "tv-series"}
	if err := svc.Add(context.Background(), 7, movie); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.upserts != 1 {
		t.Fatalf("expected one write, got %d", repo.upserts)
	}
}

func TestStorageFailureIsAFailureResultNotAPanic(t *testing.T) {
	repo := &stubRepo{err: errors.New("disk on fire")}
	svc := NewFavoritesService(repo, quietLogger())
	ctx := context.Background()

	if err := svc.Add(ctx, 7, &models.Movie{Id: 1}); err == nil {
		t.Fatal("expected failure result")
	}
	if err := svc.Remove(ctx, 7, 1); err == nil {
		t.Fatal("expected failure result")
	}
	if _, err := svc.List(ctx, 7, 10); err == nil {
		t.Fatal("expected failure result")
	}
	if got := svc.Count(ctx, 7); got != 0 {
		t.Fatalf("count must degrade to zero on failure, got %d", got)
	}
}

func TestCountPassesThrough(t *testing.T) {
	svc := NewFavoritesService(&stubRepo{}, quietLogger())
	if got := svc.Count(context.Background(), 7); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
