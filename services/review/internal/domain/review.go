package domain

import "time"

// MaxImages is the maximum number of images attached to one review.
const MaxImages = 9

// Review is a user's review of a stall. TotalCost and NumberOfPeople are
// optional price information; a review without them contributes to the rating
// aggregate but not the price aggregate.
type Review struct {
	ID             string    `json:"id"`
	StallID        string    `json:"stall_id"`
	UserID         string    `json:"user_id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	ImageURLs      []string  `json:"image_urls"`
	TotalCost      *float64  `json:"total_cost,omitempty"`
	NumberOfPeople *int      `json:"number_of_people,omitempty"`
	LikesCount     int       `json:"likes_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReviewLike records one user's like on one review. Uniqueness on
// (review_id, user_id) is enforced by the store.
type ReviewLike struct {
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StallAggregate is the recomputed projection of one stall's reviews. The
// averages are nil, not zero, when no contributing reviews exist. ReviewCount
// and PriceCount are independent: a review without cost information counts
// toward the former only.
type StallAggregate struct {
	StallID       string    `json:"stall_id"`
	AverageRating *float64  `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	AveragePrice  *float64  `json:"average_price"`
	PriceCount    int       `json:"price_count"`
	ComputedAt    time.Time `json:"computed_at"`
}
