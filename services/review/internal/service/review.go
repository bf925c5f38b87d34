package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/event"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/repository"
)

// StallChecker verifies stall existence against the stall service.
type StallChecker interface {
	Exists(ctx context.Context, stallID string) (bool, error)
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	StallID        string
	UserID         string
	Rating         int
	Comment        string
	ImageURLs      []string
	TotalCost      *float64
	NumberOfPeople *int
}

// UpdateReviewInput holds the optional fields for updating a review.
type UpdateReviewInput struct {
	Rating         *int
	Comment        *string
	ImageURLs      []string
	TotalCost      *float64
	NumberOfPeople *int
}

// ReviewResult pairs a mutated review with the stall aggregate recomputed in
// the same operation, so callers can show updated stats without waiting for
// the async event round-trip.
type ReviewResult struct {
	Review    *domain.Review        `json:"review"`
	Aggregate *domain.StallAggregate `json:"aggregate"`
}

// ReviewService implements review CRUD with synchronous aggregate recompute
// and best-effort event publication.
type ReviewService struct {
	repo     repository.ReviewRepository
	stalls   StallChecker
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service. The stall checker may be nil,
// in which case stall existence is not verified.
func NewReviewService(
	repo repository.ReviewRepository,
	stalls StallChecker,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:     repo,
		stalls:   stalls,
		producer: producer,
		logger:   logger,
	}
}

// CreateReview validates and stores a new review, recomputes the stall
// aggregate, and publishes the change events.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewResult, error) {
	if err := validateReviewFields(input.Rating, input.ImageURLs, input.TotalCost, input.NumberOfPeople); err != nil {
		return nil, err
	}

	if err := s.checkStallExists(ctx, input.StallID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:             uuid.New().String(),
		StallID:        input.StallID,
		UserID:         input.UserID,
		Rating:         input.Rating,
		Comment:        input.Comment,
		ImageURLs:      input.ImageURLs,
		TotalCost:      input.TotalCost,
		NumberOfPeople: input.NumberOfPeople,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if review.ImageURLs == nil {
		review.ImageURLs = []string{}
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("stall_id", review.StallID),
		slog.Int("rating", review.Rating),
	)

	agg := s.recomputeAndPublish(ctx, review.StallID, true, input.TotalCost != nil)
	return &ReviewResult{Review: review, Aggregate: agg}, nil
}

// GetReview returns a review by ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByStall returns a page of a stall's reviews.
func (s *ReviewService) ListByStall(ctx context.Context, stallID string, page, perPage int) ([]domain.Review, int, error) {
	return s.repo.ListByStall(ctx, stallID, page, perPage)
}

// ListByUser returns a page of a user's reviews.
func (s *ReviewService) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	return s.repo.ListByUser(ctx, userID, page, perPage)
}

// UpdateReview applies the non-nil fields of input to the caller's own review
// and recomputes the stall aggregate.
func (s *ReviewService) UpdateReview(ctx context.Context, id, userID string, input *UpdateReviewInput) (*ReviewResult, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apperrors.Forbidden("only the author can update this review")
	}

	ratingChanged := false
	priceChanged := false

	if input.Rating != nil {
		review.Rating = *input.Rating
		ratingChanged = true
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	if input.ImageURLs != nil {
		review.ImageURLs = input.ImageURLs
	}
	if input.TotalCost != nil {
		review.TotalCost = input.TotalCost
		priceChanged = true
	}
	if input.NumberOfPeople != nil {
		review.NumberOfPeople = input.NumberOfPeople
	}

	if err := validateReviewFields(review.Rating, review.ImageURLs, review.TotalCost, review.NumberOfPeople); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated", slog.String("review_id", id))

	agg := s.recomputeAndPublish(ctx, review.StallID, ratingChanged, priceChanged)
	return &ReviewResult{Review: review, Aggregate: agg}, nil
}

// DeleteReview removes the caller's own review and recomputes the stall
// aggregate. Deleting the last review resets the averages to nil.
func (s *ReviewService) DeleteReview(ctx context.Context, id, userID string) (*domain.StallAggregate, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apperrors.Forbidden("only the author can delete this review")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review deleted", slog.String("review_id", id))

	agg := s.recomputeAndPublish(ctx, review.StallID, true, review.TotalCost != nil)
	return agg, nil
}

// checkStallExists queries the stall directory. An unreachable or failing
// stall service degrades to accepting the review; only a definitive 404
// rejects it.
func (s *ReviewService) checkStallExists(ctx context.Context, stallID string) error {
	if s.stalls == nil {
		return nil
	}

	exists, err := s.stalls.Exists(ctx, stallID)
	if err != nil {
		s.logger.WarnContext(ctx, "stall existence check degraded, accepting review",
			slog.String("stall_id", stallID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !exists {
		return apperrors.NotFound("stall", stallID)
	}
	return nil
}

// recomputeAndPublish re-scans the stall's reviews and publishes the change
// events for the aggregates that may have moved. The review write has already
// committed; publish failures are logged, never surfaced to the caller.
func (s *ReviewService) recomputeAndPublish(ctx context.Context, stallID string, ratingChanged, priceChanged bool) *domain.StallAggregate {
	agg, err := s.repo.RecomputeAggregate(ctx, stallID)
	if err != nil {
		s.logger.ErrorContext(ctx, "aggregate recompute failed",
			slog.String("stall_id", stallID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if s.producer != nil {
		if ratingChanged {
			if err := s.producer.PublishRatingChanged(ctx, agg); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish rating_changed event",
					slog.String("stall_id", stallID),
					slog.String("error", err.Error()),
				)
			}
		}
		if priceChanged {
			if err := s.producer.PublishPriceChanged(ctx, agg); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish price_changed event",
					slog.String("stall_id", stallID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return agg
}

func validateReviewFields(rating int, images []string, totalCost *float64, numberOfPeople *int) error {
	if rating < 1 || rating > 5 {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}
	if len(images) > domain.MaxImages {
		return apperrors.InvalidInput(fmt.Sprintf("at most %d images are allowed", domain.MaxImages))
	}
	if totalCost != nil && *totalCost < 0 {
		return apperrors.InvalidInput("total cost must not be negative")
	}
	if numberOfPeople != nil && *numberOfPeople < 1 {
		return apperrors.InvalidInput("number of people must be at least 1")
	}
	return nil
}
