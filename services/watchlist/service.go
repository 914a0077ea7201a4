package watchlist

import (
	"context"
	"errors"
	"strings"

	"streamscout/internal/database"
	"streamscout/models"
)

var (
	ErrMissingFields = errors.New("titleId, title and mediaType are required")
	ErrNotFound      = errors.New("watchlist entry not found")
)

// Service manages per-user saved titles.
type Service struct {
	repo *database.WatchlistRepository
}

// NewService creates a watchlist service on the given repository.
func NewService(repo *database.WatchlistRepository) *Service {
	return &Service{repo: repo}
}

// List returns the user's saved titles, most recently added first.
func (s *Service) List(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	return s.repo.List(ctx, userID)
}

// Add saves a title for the user, refreshing metadata when it already exists.
func (s *Service) Add(ctx context.Context, userID int64, input models.WatchlistUpsert) (models.WatchlistItem, error) {
	input.TitleID = strings.TrimSpace(input.TitleID)
	input.Title = strings.TrimSpace(input.Title)
	input.MediaType = strings.TrimSpace(input.MediaType)

	if input.TitleID == "" || input.Title == "" || input.MediaType == "" {
		return models.WatchlistItem{}, ErrMissingFields
	}
	return s.repo.Upsert(ctx, userID, input)
}

// Contains reports whether the user has saved the given title.
func (s *Service) Contains(ctx context.Context, userID int64, titleID string) (bool, error) {
	return s.repo.Contains(ctx, userID, titleID)
}

// Remove deletes one saved title. Missing entries are an explicit error so
// the surface can answer 404.
func (s *Service) Remove(ctx context.Context, userID int64, titleID string) error {
	removed, err := s.repo.Remove(ctx, userID, titleID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
