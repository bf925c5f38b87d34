package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository"
)

// ApplyRatingChanged overwrites a stall's rating projection with the absolute
// values from a rating-changed event. A missing stall is a no-op, never an
// error: the stall may have been deleted, or the event may have outrun the
// directory store.
func (s *StallService) ApplyRatingChanged(ctx context.Context, stallID string, averageRating *float64, reviewCount int, ts time.Time) error {
	err := s.repo.ApplyRatingAggregate(ctx, stallID, repository.RatingAggregate{
		AverageRating: averageRating,
		ReviewCount:   reviewCount,
		Timestamp:     ts,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "rating event for unknown stall, skipping",
				slog.String("stall_id", stallID),
			)
			return nil
		}
		return fmt.Errorf("apply rating changed: %w", err)
	}

	s.invalidateCache(ctx, stallID)

	s.logger.InfoContext(ctx, "stall rating projection applied",
		slog.String("stall_id", stallID),
		slog.Any("average_rating", averageRating),
		slog.Int("review_count", reviewCount),
	)
	return nil
}

// ApplyPriceChanged overwrites a stall's price projection. Missing stall is a
// no-op, same as ApplyRatingChanged.
func (s *StallService) ApplyPriceChanged(ctx context.Context, stallID string, averagePrice *float64, priceCount int, ts time.Time) error {
	err := s.repo.ApplyPriceAggregate(ctx, stallID, repository.PriceAggregate{
		AveragePrice: averagePrice,
		PriceCount:   priceCount,
		Timestamp:    ts,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "price event for unknown stall, skipping",
				slog.String("stall_id", stallID),
			)
			return nil
		}
		return fmt.Errorf("apply price changed: %w", err)
	}

	s.invalidateCache(ctx, stallID)

	s.logger.InfoContext(ctx, "stall price projection applied",
		slog.String("stall_id", stallID),
		slog.Any("average_price", averagePrice),
		slog.Int("price_count", priceCount),
	)
	return nil
}
