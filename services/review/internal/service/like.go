package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/repository"
)

// LikeService manages review likes. Uniqueness is enforced by the store, so
// concurrent duplicate likes collapse to a single row without racing.
type LikeService struct {
	likes   repository.LikeRepository
	reviews repository.ReviewRepository
	logger  *slog.Logger
}

// NewLikeService creates a new like service.
func NewLikeService(likes repository.LikeRepository, reviews repository.ReviewRepository, logger *slog.Logger) *LikeService {
	return &LikeService{
		likes:   likes,
		reviews: reviews,
		logger:  logger,
	}
}

// Like records that a user likes a review. Liking an already-liked review is
// a no-op; liked reports whether a new like was recorded.
func (s *LikeService) Like(ctx context.Context, reviewID, userID string) (liked bool, err error) {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return false, err
	}

	liked, err = s.likes.Like(ctx, reviewID, userID)
	if err != nil {
		return false, fmt.Errorf("like review: %w", err)
	}

	if liked {
		s.logger.InfoContext(ctx, "review liked",
			slog.String("review_id", reviewID),
			slog.String("user_id", userID),
		)
	}
	return liked, nil
}

// Unlike removes a user's like from a review. Unliking a review the user
// never liked is a no-op; unliked reports whether a like was removed.
func (s *LikeService) Unlike(ctx context.Context, reviewID, userID string) (unliked bool, err error) {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return false, err
	}

	unliked, err = s.likes.Unlike(ctx, reviewID, userID)
	if err != nil {
		return false, fmt.Errorf("unlike review: %w", err)
	}

	if unliked {
		s.logger.InfoContext(ctx, "review unliked",
			slog.String("review_id", reviewID),
			slog.String("user_id", userID),
		)
	}
	return unliked, nil
}
