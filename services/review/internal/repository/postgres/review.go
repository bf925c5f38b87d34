package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
)

const reviewColumns = `id, stall_id, user_id, rating, comment, image_urls, total_cost,
	number_of_people, likes_count, created_at, updated_at`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	imagesJSON, err := json.Marshal(review.ImageURLs)
	if err != nil {
		return fmt.Errorf("marshal image urls: %w", err)
	}

	query := `
		INSERT INTO reviews (id, stall_id, user_id, rating, comment, image_urls, total_cost,
			number_of_people, likes_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10)`

	_, err = r.db.Exec(ctx, query,
		review.ID,
		review.StallID,
		review.UserID,
		review.Rating,
		review.Comment,
		imagesJSON,
		review.TotalCost,
		review.NumberOfPeople,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return review, nil
}

// ListByStall returns a page of a stall's reviews, newest first.
func (r *ReviewRepository) ListByStall(ctx context.Context, stallID string, page, perPage int) ([]domain.Review, int, error) {
	return r.list(ctx, "stall_id", stallID, page, perPage)
}

// ListByUser returns a page of a user's reviews, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	return r.list(ctx, "user_id", userID, page, perPage)
}

func (r *ReviewRepository) list(ctx context.Context, column, value string, page, perPage int) ([]domain.Review, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM reviews
		WHERE %s = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		reviewColumns, column,
	)

	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}

	rows, err := r.db.Query(ctx, query, value, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var (
			review     domain.Review
			imagesJSON []byte
		)
		if err := rows.Scan(
			&review.ID,
			&review.StallID,
			&review.UserID,
			&review.Rating,
			&review.Comment,
			&imagesJSON,
			&review.TotalCost,
			&review.NumberOfPeople,
			&review.LikesCount,
			&review.CreatedAt,
			&review.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		if err := unmarshalImages(imagesJSON, &review); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// Update modifies a review's author-editable fields. likes_count is never
// touched here; only the like repository writes it.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()

	imagesJSON, err := json.Marshal(review.ImageURLs)
	if err != nil {
		return fmt.Errorf("marshal image urls: %w", err)
	}

	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, image_urls = $3, total_cost = $4,
		    number_of_people = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		review.Rating,
		review.Comment,
		imagesJSON,
		review.TotalCost,
		review.NumberOfPeople,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review. Likes and reports cascade at the store level.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// RecomputeAggregate re-scans all of the stall's reviews in one query. The
// full scan makes the result absolute and therefore idempotent: recomputing
// twice without a mutation yields the same values. Price-bearing reviews are
// counted independently of rating-bearing ones.
func (r *ReviewRepository) RecomputeAggregate(ctx context.Context, stallID string) (*domain.StallAggregate, error) {
	query := `
		SELECT AVG(rating)::float8, COUNT(*), AVG(total_cost)::float8, COUNT(total_cost)
		FROM reviews
		WHERE stall_id = $1`

	agg := &domain.StallAggregate{
		StallID:    stallID,
		ComputedAt: time.Now().UTC(),
	}

	err := r.db.QueryRow(ctx, query, stallID).Scan(
		&agg.AverageRating,
		&agg.ReviewCount,
		&agg.AveragePrice,
		&agg.PriceCount,
	)
	if err != nil {
		return nil, fmt.Errorf("recompute aggregate: %w", err)
	}

	return agg, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		review     domain.Review
		imagesJSON []byte
	)
	err := row.Scan(
		&review.ID,
		&review.StallID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&imagesJSON,
		&review.TotalCost,
		&review.NumberOfPeople,
		&review.LikesCount,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalImages(imagesJSON, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func unmarshalImages(data []byte, review *domain.Review) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, &review.ImageURLs); err != nil {
			return fmt.Errorf("unmarshal image urls: %w", err)
		}
	}
	if review.ImageURLs == nil {
		review.ImageURLs = []string{}
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
