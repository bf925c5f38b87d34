package repository

import (
	"context"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
)

// ReviewRepository defines persistence operations for reviews and the
// aggregate recompute scan.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByStall(ctx context.Context, stallID string, page, perPage int) ([]domain.Review, int, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id string) error

	// RecomputeAggregate runs one full scan over the stall's reviews and
	// returns the absolute aggregate. It never errors on zero reviews; the
	// averages come back nil.
	RecomputeAggregate(ctx context.Context, stallID string) (*domain.StallAggregate, error)
}

// LikeRepository defines persistence operations for review likes. Both
// mutations adjust the review's likes_count in the same transaction as the
// row change, with the adjustment derived from the rows actually affected.
type LikeRepository interface {
	// Like inserts the like if absent. Returns true when a row was inserted,
	// false when the like already existed.
	Like(ctx context.Context, reviewID, userID string) (bool, error)

	// Unlike deletes the like if present. Returns true when a row was
	// deleted.
	Unlike(ctx context.Context, reviewID, userID string) (bool, error)
}

// ReportRepository defines persistence operations for moderation reports.
type ReportRepository interface {
	// File creates a pending report. Returns a DuplicateReport error when the
	// reporter already has an open report on this review.
	File(ctx context.Context, r *domain.ReviewReport) error

	GetByID(ctx context.Context, id string) (*domain.ReviewReport, error)
	ListPending(ctx context.Context, page, perPage int) ([]domain.ReviewReport, int, error)

	// Handle transitions the report from pending to the given terminal status
	// in one conditional update. Returns AlreadyHandled when the report
	// exists but is no longer pending, NotFound when it does not exist.
	Handle(ctx context.Context, reportID string, status domain.ReportStatus, note, handlerID string) error
}
