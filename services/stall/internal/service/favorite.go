package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository"
)

// FavoriteService implements the business logic for favorites.
type FavoriteService struct {
	repo      repository.FavoriteRepository
	stallRepo repository.StallRepository
	logger    *slog.Logger
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(repo repository.FavoriteRepository, stallRepo repository.StallRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		repo:      repo,
		stallRepo: stallRepo,
		logger:    logger,
	}
}

// AddFavorite marks a stall as a favorite of the user. Favoriting an already
// favorited stall is a no-op: the store's primary key absorbs the duplicate.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, stallID string) error {
	if _, err := s.stallRepo.GetByID(ctx, stallID); err != nil {
		return err
	}

	if err := s.repo.Add(ctx, userID, stallID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite added",
		slog.String("user_id", userID),
		slog.String("stall_id", stallID),
	)
	return nil
}

// RemoveFavorite removes a stall from the user's favorites.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, stallID string) error {
	if err := s.repo.Remove(ctx, userID, stallID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "favorite removed",
		slog.String("user_id", userID),
		slog.String("stall_id", stallID),
	)
	return nil
}

// ListFavorites returns a page of the user's favorited stalls.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string, page, perPage int) ([]domain.Stall, int, error) {
	return s.repo.ListByUser(ctx, userID, page, perPage)
}
