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
)

// CafeteriaRepository implements repository.CafeteriaRepository using PostgreSQL.
type CafeteriaRepository struct {
	db database.DBTX
}

// NewCafeteriaRepository creates a new PostgreSQL-backed cafeteria repository.
func NewCafeteriaRepository(db database.DBTX) *CafeteriaRepository {
	return &CafeteriaRepository{db: db}
}

// Create inserts a new cafeteria into the database.
func (r *CafeteriaRepository) Create(ctx context.Context, c *domain.Cafeteria) error {
	query := `
		INSERT INTO cafeterias (id, name, slug, description, location, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.Location,
		c.Latitude,
		c.Longitude,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("cafeteria", "slug", c.Slug)
		}
		return fmt.Errorf("insert cafeteria: %w", err)
	}

	return nil
}

// GetByID retrieves a cafeteria by its ID.
func (r *CafeteriaRepository) GetByID(ctx context.Context, id string) (*domain.Cafeteria, error) {
	query := `
		SELECT id, name, slug, description, location, latitude, longitude, created_at, updated_at
		FROM cafeterias
		WHERE id = $1`

	var c domain.Cafeteria
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Location,
		&c.Latitude,
		&c.Longitude,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cafeteria", id)
		}
		return nil, fmt.Errorf("scan cafeteria: %w", err)
	}

	return &c, nil
}

// List returns a page of cafeterias with the total count.
func (r *CafeteriaRepository) List(ctx context.Context, page, perPage int) ([]domain.Cafeteria, int, error) {
	query := `
		SELECT id, name, slug, description, location, latitude, longitude, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM cafeterias
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}

	rows, err := r.db.Query(ctx, query, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list cafeterias: %w", err)
	}
	defer rows.Close()

	var (
		cafeterias []domain.Cafeteria
		totalCount int
	)

	for rows.Next() {
		var c domain.Cafeteria
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.Description,
			&c.Location,
			&c.Latitude,
			&c.Longitude,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan cafeteria row: %w", err)
		}
		cafeterias = append(cafeterias, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cafeteria rows: %w", err)
	}

	if cafeterias == nil {
		cafeterias = []domain.Cafeteria{}
	}

	return cafeterias, totalCount, nil
}

// Update modifies an existing cafeteria.
func (r *CafeteriaRepository) Update(ctx context.Context, c *domain.Cafeteria) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE cafeterias
		SET name = $1, slug = $2, description = $3, location = $4, latitude = $5, longitude = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		c.Name,
		c.Slug,
		c.Description,
		c.Location,
		c.Latitude,
		c.Longitude,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("cafeteria", "slug", c.Slug)
		}
		return fmt.Errorf("update cafeteria: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cafeteria", c.ID)
	}

	return nil
}

// Delete removes a cafeteria by its ID.
func (r *CafeteriaRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM cafeterias WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cafeteria: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cafeteria", id)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
