package repository

import (
	"context"
	"time"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
)

// StallFilter defines the store-level criteria for the stall search. Absent
// (nil or empty) criteria are omitted from the query entirely.
//
// Distance criteria are deliberately not represented here: the store cannot
// express them, so the search engine applies them in memory after the page is
// fetched.
type StallFilter struct {
	Keyword      *string
	CuisineTypes []string
	MinRating    *float64
	HalalOnly    bool
	CafeteriaID  *string
	SortBy       string
	Page         int
	PerPage      int
}

// StallSearchRow is one row of a stall search: the stall plus its parent
// cafeteria's coordinates, used as a fallback for the distance pass.
type StallSearchRow struct {
	Stall        domain.Stall
	CafeteriaLat float64
	CafeteriaLon float64
}

// RatingAggregate is the absolute rating projection carried by a
// rating-changed event.
type RatingAggregate struct {
	AverageRating *float64
	ReviewCount   int
	Timestamp     time.Time
}

// PriceAggregate is the absolute price projection carried by a price-changed
// event.
type PriceAggregate struct {
	AveragePrice *float64
	PriceCount   int
	Timestamp    time.Time
}

// CafeteriaRepository defines persistence operations for cafeterias.
type CafeteriaRepository interface {
	Create(ctx context.Context, c *domain.Cafeteria) error
	GetByID(ctx context.Context, id string) (*domain.Cafeteria, error)
	List(ctx context.Context, page, perPage int) ([]domain.Cafeteria, int, error)
	Update(ctx context.Context, c *domain.Cafeteria) error
	Delete(ctx context.Context, id string) error
}

// StallRepository defines persistence operations for stalls.
type StallRepository interface {
	Create(ctx context.Context, s *domain.Stall) error
	GetByID(ctx context.Context, id string) (*domain.Stall, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Stall, error)

	// Search executes the predicate, sort, and pagination against the store
	// and returns one page of rows plus the pre-filter total count.
	Search(ctx context.Context, filter StallFilter) ([]StallSearchRow, int, error)

	Update(ctx context.Context, s *domain.Stall) error
	Delete(ctx context.Context, id string) error

	// ApplyRatingAggregate overwrites the stall's rating projection in a
	// single-row update. Returns ErrNotFound when the stall does not exist.
	ApplyRatingAggregate(ctx context.Context, stallID string, agg RatingAggregate) error

	// ApplyPriceAggregate overwrites the stall's price projection.
	ApplyPriceAggregate(ctx context.Context, stallID string, agg PriceAggregate) error
}

// FavoriteRepository defines persistence operations for user favorites.
type FavoriteRepository interface {
	// Add inserts the favorite if absent. Adding an existing favorite is a
	// no-op, enforced by the store's primary key.
	Add(ctx context.Context, userID, stallID string) error

	// Remove deletes the favorite. Returns ErrNotFound when no row existed.
	Remove(ctx context.Context, userID, stallID string) error

	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Stall, int, error)
}
