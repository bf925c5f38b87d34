package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/geo"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/slug"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/cache"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository"
)

// SearchCriteria is the full input of the stall search engine: the
// store-level predicates plus the location criteria handled in memory.
type SearchCriteria struct {
	Keyword       *string
	CuisineTypes  []string
	MinRating     *float64
	HalalOnly     bool
	CafeteriaID   *string
	UserLat       *float64
	UserLon       *float64
	MaxDistanceKm *float64
	SortBy        string
	Page          int
	PerPage       int
}

// SearchResult is one page of search results. TotalCount reflects the
// pre-distance-filter match count; see Search for the tradeoff.
type SearchResult struct {
	Stalls     []domain.StallSearchResult `json:"stalls"`
	TotalCount int                        `json:"total_count"`
	Page       int                        `json:"page"`
	PerPage    int                        `json:"per_page"`
}

// CreateStallInput holds the parameters for creating a stall.
type CreateStallInput struct {
	CafeteriaID string
	Name        string
	Description string
	CuisineType string
	HalalInfo   *string
	ImageURL    string
	Latitude    *float64
	Longitude   *float64
}

// UpdateStallInput holds the optional fields for updating a stall. Aggregate
// fields are deliberately absent: only the event consumer writes those.
type UpdateStallInput struct {
	Name        *string
	Description *string
	CuisineType *string
	HalalInfo   *string
	ImageURL    *string
	Latitude    *float64
	Longitude   *float64
}

// StallService implements the stall directory and the search engine.
type StallService struct {
	repo          repository.StallRepository
	cafeteriaRepo repository.CafeteriaRepository
	cache         *cache.StallCache
	logger        *slog.Logger
}

// NewStallService creates a new stall service. The cache may be nil, in which
// case every read goes to the store.
func NewStallService(
	repo repository.StallRepository,
	cafeteriaRepo repository.CafeteriaRepository,
	stallCache *cache.StallCache,
	logger *slog.Logger,
) *StallService {
	return &StallService{
		repo:          repo,
		cafeteriaRepo: cafeteriaRepo,
		cache:         stallCache,
		logger:        logger,
	}
}

// CreateStall creates a new stall under an existing cafeteria.
func (s *StallService) CreateStall(ctx context.Context, input *CreateStallInput) (*domain.Stall, error) {
	if _, err := s.cafeteriaRepo.GetByID(ctx, input.CafeteriaID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stall := &domain.Stall{
		ID:          uuid.New().String(),
		CafeteriaID: input.CafeteriaID,
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		CuisineType: input.CuisineType,
		HalalInfo:   input.HalalInfo,
		ImageURL:    input.ImageURL,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, stall); err != nil {
		return nil, fmt.Errorf("create stall: %w", err)
	}

	s.logger.InfoContext(ctx, "stall created",
		slog.String("stall_id", stall.ID),
		slog.String("cafeteria_id", stall.CafeteriaID),
		slog.String("name", stall.Name),
	)

	return stall, nil
}

// GetStall returns a stall by ID, served from the cache when possible.
func (s *StallService) GetStall(ctx context.Context, id string) (*domain.Stall, error) {
	if s.cache != nil {
		if stall, ok := s.cache.Get(ctx, id); ok {
			return stall, nil
		}
	}

	stall, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, stall)
	}

	return stall, nil
}

// GetStallBySlug returns a stall by its slug.
func (s *StallService) GetStallBySlug(ctx context.Context, stallSlug string) (*domain.Stall, error) {
	return s.repo.GetBySlug(ctx, stallSlug)
}

// Search runs the stall search engine: a conjunctive store query with sort
// and pagination, followed by the in-memory distance pass when the criteria
// carry a user location and either a distance sort or a max-distance bound.
//
// The distance pass runs after pagination, so a page can come back with fewer
// than PerPage items even when more matches exist on later pages, and
// TotalCount reflects the pre-filter count. This mirrors the store's
// inability to express distance natively and is part of the API contract.
func (s *StallService) Search(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	page := criteria.Page
	if page <= 0 {
		page = 1
	}
	perPage := criteria.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	sortBy := criteria.SortBy
	if !domain.IsValidSortBy(sortBy) {
		sortBy = domain.SortByRating
	}

	rows, total, err := s.repo.Search(ctx, repository.StallFilter{
		Keyword:      criteria.Keyword,
		CuisineTypes: criteria.CuisineTypes,
		MinRating:    criteria.MinRating,
		HalalOnly:    criteria.HalalOnly,
		CafeteriaID:  criteria.CafeteriaID,
		SortBy:       sortBy,
		Page:         page,
		PerPage:      perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("search stalls: %w", err)
	}

	hasLocation := criteria.UserLat != nil && criteria.UserLon != nil
	distancePass := hasLocation && (sortBy == domain.SortByDistance || criteria.MaxDistanceKm != nil)

	results := make([]domain.StallSearchResult, 0, len(rows))
	for _, row := range rows {
		result := domain.StallSearchResult{Stall: row.Stall}

		if distancePass {
			lat, lon := row.CafeteriaLat, row.CafeteriaLon
			if row.Stall.Latitude != nil && row.Stall.Longitude != nil {
				lat, lon = *row.Stall.Latitude, *row.Stall.Longitude
			}

			d := geo.DistanceKm(*criteria.UserLat, *criteria.UserLon, lat, lon)
			if criteria.MaxDistanceKm != nil && d > *criteria.MaxDistanceKm {
				continue
			}
			result.DistanceKm = &d
		}

		results = append(results, result)
	}

	if distancePass && sortBy == domain.SortByDistance {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	}

	return &SearchResult{
		Stalls:     results,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// UpdateStall applies the non-nil fields of input to an existing stall and
// invalidates its cache entry.
func (s *StallService) UpdateStall(ctx context.Context, id string, input *UpdateStallInput) (*domain.Stall, error) {
	stall, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		stall.Name = *input.Name
		stall.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		stall.Description = *input.Description
	}
	if input.CuisineType != nil {
		stall.CuisineType = *input.CuisineType
	}
	if input.HalalInfo != nil {
		stall.HalalInfo = input.HalalInfo
	}
	if input.ImageURL != nil {
		stall.ImageURL = *input.ImageURL
	}
	if input.Latitude != nil {
		stall.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		stall.Longitude = input.Longitude
	}

	if err := s.repo.Update(ctx, stall); err != nil {
		return nil, fmt.Errorf("update stall: %w", err)
	}

	s.invalidateCache(ctx, id)
	s.logger.InfoContext(ctx, "stall updated", slog.String("stall_id", id))

	return stall, nil
}

// DeleteStall removes a stall and invalidates its cache entry.
func (s *StallService) DeleteStall(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx, id)
	s.logger.InfoContext(ctx, "stall deleted", slog.String("stall_id", id))
	return nil
}

// ExistsStall reports whether a stall with the given ID exists.
func (s *StallService) ExistsStall(ctx context.Context, id string) (bool, error) {
	_, err := s.GetStall(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *StallService) invalidateCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "stall cache invalidation failed",
			slog.String("stall_id", id),
			slog.String("error", err.Error()),
		)
	}
}
