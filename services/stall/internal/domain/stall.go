package domain

import "time"

// Sort keys recognized by the stall search engine. Anything else falls back
// to SortByRating.
const (
	SortByRating   = "rating"
	SortByReviews  = "reviews"
	SortByPrice    = "price"
	SortByDistance = "distance"
)

// IsValidSortBy reports whether v is a recognized sort key.
func IsValidSortBy(v string) bool {
	switch v {
	case SortByRating, SortByReviews, SortByPrice, SortByDistance:
		return true
	}
	return false
}

// Stall is a food vendor inside a cafeteria.
//
// AverageRating, AveragePrice, and ReviewCount are projections of the review
// domain's data, applied by the review-event consumer. They are never mutated
// by stall-edit operations and may lag the review store, but each applied
// event fully replaces the prior value.
type Stall struct {
	ID          string   `json:"id"`
	CafeteriaID string   `json:"cafeteria_id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	CuisineType string   `json:"cuisine_type"`
	HalalInfo   *string  `json:"halal_info,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	AverageRating *float64 `json:"average_rating,omitempty"`
	AveragePrice  *float64 `json:"average_price,omitempty"`
	ReviewCount   int      `json:"review_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StallSearchResult is a stall enriched with the distance from the searcher's
// location, when the search criteria carried one.
type StallSearchResult struct {
	Stall
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
