package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/slug"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository"
)

// CreateCafeteriaInput holds the parameters for creating a cafeteria.
type CreateCafeteriaInput struct {
	Name        string
	Description string
	Location    string
	Latitude    float64
	Longitude   float64
}

// UpdateCafeteriaInput holds the optional fields for updating a cafeteria.
type UpdateCafeteriaInput struct {
	Name        *string
	Description *string
	Location    *string
	Latitude    *float64
	Longitude   *float64
}

// CafeteriaService implements the business logic for cafeteria operations.
type CafeteriaService struct {
	repo   repository.CafeteriaRepository
	logger *slog.Logger
}

// NewCafeteriaService creates a new cafeteria service.
func NewCafeteriaService(repo repository.CafeteriaRepository, logger *slog.Logger) *CafeteriaService {
	return &CafeteriaService{
		repo:   repo,
		logger: logger,
	}
}

// CreateCafeteria creates a new cafeteria.
func (s *CafeteriaService) CreateCafeteria(ctx context.Context, input *CreateCafeteriaInput) (*domain.Cafeteria, error) {
	now := time.Now().UTC()
	c := &domain.Cafeteria{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create cafeteria: %w", err)
	}

	s.logger.InfoContext(ctx, "cafeteria created",
		slog.String("cafeteria_id", c.ID),
		slog.String("name", c.Name),
	)

	return c, nil
}

// GetCafeteria returns a cafeteria by ID.
func (s *CafeteriaService) GetCafeteria(ctx context.Context, id string) (*domain.Cafeteria, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCafeterias returns a page of cafeterias with the total count.
func (s *CafeteriaService) ListCafeterias(ctx context.Context, page, perPage int) ([]domain.Cafeteria, int, error) {
	return s.repo.List(ctx, page, perPage)
}

// UpdateCafeteria applies the non-nil fields of input to an existing cafeteria.
func (s *CafeteriaService) UpdateCafeteria(ctx context.Context, id string, input *UpdateCafeteriaInput) (*domain.Cafeteria, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		c.Name = *input.Name
		c.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Location != nil {
		c.Location = *input.Location
	}
	if input.Latitude != nil {
		c.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		c.Longitude = *input.Longitude
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update cafeteria: %w", err)
	}

	s.logger.InfoContext(ctx, "cafeteria updated", slog.String("cafeteria_id", c.ID))

	return c, nil
}

// DeleteCafeteria removes a cafeteria.
func (s *CafeteriaService) DeleteCafeteria(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "cafeteria deleted", slog.String("cafeteria_id", id))
	return nil
}
