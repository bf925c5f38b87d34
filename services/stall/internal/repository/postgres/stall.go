package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository"
)

const stallColumns = `s.id, s.cafeteria_id, s.name, s.slug, s.description, s.cuisine_type, s.halal_info,
	s.image_url, s.latitude, s.longitude, s.average_rating, s.average_price, s.review_count,
	s.created_at, s.updated_at`

// StallRepository implements repository.StallRepository using PostgreSQL.
type StallRepository struct {
	db database.DBTX
}

// NewStallRepository creates a new PostgreSQL-backed stall repository.
func NewStallRepository(db database.DBTX) *StallRepository {
	return &StallRepository{db: db}
}

// Create inserts a new stall. Aggregate columns start at their zero
// projection (null averages, zero count) regardless of the input.
func (r *StallRepository) Create(ctx context.Context, s *domain.Stall) error {
	query := `
		INSERT INTO stalls (id, cafeteria_id, name, slug, description, cuisine_type, halal_info,
			image_url, latitude, longitude, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		s.ID,
		s.CafeteriaID,
		s.Name,
		s.Slug,
		s.Description,
		s.CuisineType,
		s.HalalInfo,
		s.ImageURL,
		s.Latitude,
		s.Longitude,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("stall", "slug", s.Slug)
		}
		return fmt.Errorf("insert stall: %w", err)
	}

	return nil
}

// GetByID retrieves a stall by its ID.
func (r *StallRepository) GetByID(ctx context.Context, id string) (*domain.Stall, error) {
	query := fmt.Sprintf(`SELECT %s FROM stalls s WHERE s.id = $1`, stallColumns)
	return r.scanStall(ctx, query, id)
}

// GetBySlug retrieves a stall by its slug.
func (r *StallRepository) GetBySlug(ctx context.Context, slug string) (*domain.Stall, error) {
	query := fmt.Sprintf(`SELECT %s FROM stalls s WHERE s.slug = $1`, stallColumns)
	return r.scanStall(ctx, query, slug)
}

// Search executes the conjunctive predicate, sort, and pagination against the
// store in one query. Each present criterion contributes exactly one WHERE
// conjunct; absent criteria add nothing. The parent cafeteria's coordinates
// ride along on every row for the in-memory distance pass.
func (r *StallRepository) Search(ctx context.Context, filter repository.StallFilter) ([]repository.StallSearchRow, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Keyword != nil {
		conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d OR s.cuisine_type ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Keyword+"%")
		argIndex++
	}

	if len(filter.CuisineTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("s.cuisine_type = ANY($%d)", argIndex))
		args = append(args, filter.CuisineTypes)
		argIndex++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("s.average_rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	if filter.HalalOnly {
		conditions = append(conditions, "s.halal_info IS NOT NULL AND s.halal_info <> ''")
	}

	if filter.CafeteriaID != nil {
		conditions = append(conditions, fmt.Sprintf("s.cafeteria_id = $%d", argIndex))
		args = append(args, *filter.CafeteriaID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, c.latitude AS cafeteria_lat, c.longitude AS cafeteria_lon,
			   count(*) OVER() AS total_count
		FROM stalls s
		JOIN cafeterias c ON c.id = s.cafeteria_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		stallColumns, whereClause, orderClause(filter.SortBy), argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search stalls: %w", err)
	}
	defer rows.Close()

	var (
		results    []repository.StallSearchRow
		totalCount int
	)

	for rows.Next() {
		var row repository.StallSearchRow
		if err := rows.Scan(
			&row.Stall.ID,
			&row.Stall.CafeteriaID,
			&row.Stall.Name,
			&row.Stall.Slug,
			&row.Stall.Description,
			&row.Stall.CuisineType,
			&row.Stall.HalalInfo,
			&row.Stall.ImageURL,
			&row.Stall.Latitude,
			&row.Stall.Longitude,
			&row.Stall.AverageRating,
			&row.Stall.AveragePrice,
			&row.Stall.ReviewCount,
			&row.Stall.CreatedAt,
			&row.Stall.UpdatedAt,
			&row.CafeteriaLat,
			&row.CafeteriaLon,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stall search row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stall search rows: %w", err)
	}

	if results == nil {
		results = []repository.StallSearchRow{}
	}

	return results, totalCount, nil
}

// orderClause maps a sort key to a store-level ORDER BY. Distance cannot be
// expressed at the store, so it falls back to a stable id order and is
// corrected in memory by the search engine.
func orderClause(sortBy string) string {
	switch sortBy {
	case domain.SortByReviews:
		return "s.review_count DESC NULLS LAST, s.id ASC"
	case domain.SortByPrice:
		return "s.average_price ASC NULLS LAST, s.id ASC"
	case domain.SortByDistance:
		return "s.id ASC"
	default:
		return "s.average_rating DESC NULLS LAST, s.id ASC"
	}
}

// Update modifies a stall's editable fields. Aggregate columns are never
// touched here; only the event consumer writes them.
func (r *StallRepository) Update(ctx context.Context, s *domain.Stall) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE stalls
		SET cafeteria_id = $1, name = $2, slug = $3, description = $4, cuisine_type = $5,
		    halal_info = $6, image_url = $7, latitude = $8, longitude = $9, updated_at = $10
		WHERE id = $11`

	ct, err := r.db.Exec(ctx, query,
		s.CafeteriaID,
		s.Name,
		s.Slug,
		s.Description,
		s.CuisineType,
		s.HalalInfo,
		s.ImageURL,
		s.Latitude,
		s.Longitude,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("stall", "slug", s.Slug)
		}
		return fmt.Errorf("update stall: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stall", s.ID)
	}

	return nil
}

// Delete removes a stall by its ID.
func (r *StallRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM stalls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stall: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stall", id)
	}

	return nil
}

// ApplyRatingAggregate overwrites the stall's rating projection with the
// absolute values carried by a rating-changed event.
func (r *StallRepository) ApplyRatingAggregate(ctx context.Context, stallID string, agg repository.RatingAggregate) error {
	query := `
		UPDATE stalls
		SET average_rating = $1, review_count = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, agg.AverageRating, agg.ReviewCount, time.Now().UTC(), stallID)
	if err != nil {
		return fmt.Errorf("apply rating aggregate: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stall", stallID)
	}

	return nil
}

// ApplyPriceAggregate overwrites the stall's price projection.
func (r *StallRepository) ApplyPriceAggregate(ctx context.Context, stallID string, agg repository.PriceAggregate) error {
	query := `
		UPDATE stalls
		SET average_price = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, agg.AveragePrice, time.Now().UTC(), stallID)
	if err != nil {
		return fmt.Errorf("apply price aggregate: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stall", stallID)
	}

	return nil
}

func (r *StallRepository) scanStall(ctx context.Context, query string, args ...any) (*domain.Stall, error) {
	var s domain.Stall
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.CafeteriaID,
		&s.Name,
		&s.Slug,
		&s.Description,
		&s.CuisineType,
		&s.HalalInfo,
		&s.ImageURL,
		&s.Latitude,
		&s.Longitude,
		&s.AverageRating,
		&s.AveragePrice,
		&s.ReviewCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan stall: %w", err)
	}

	return &s, nil
}
