package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
)

// FavoriteRepository implements repository.FavoriteRepository using PostgreSQL.
type FavoriteRepository struct {
	db database.DBTX
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(db database.DBTX) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add inserts the favorite if absent. The primary key on (user_id, stall_id)
// makes a repeated favorite a no-op rather than an error.
func (r *FavoriteRepository) Add(ctx context.Context, userID, stallID string) error {
	query := `
		INSERT INTO favorites (user_id, stall_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, stall_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, userID, stallID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}

	return nil
}

// Remove deletes the favorite if present.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, stallID string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND stall_id = $2`, userID, stallID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", stallID)
	}

	return nil
}

// ListByUser returns a page of a user's favorited stalls, most recently
// favorited first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Stall, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM favorites f
		JOIN stalls s ON s.id = f.stall_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`,
		stallColumns,
	)

	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}

	rows, err := r.db.Query(ctx, query, userID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var (
		stalls     []domain.Stall
		totalCount int
	)

	for rows.Next() {
		var s domain.Stall
		if err := rows.Scan(
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
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan favorite row: %w", err)
		}
		stalls = append(stalls, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate favorite rows: %w", err)
	}

	if stalls == nil {
		stalls = []domain.Stall{}
	}

	return stalls, totalCount, nil
}
