package domain

import "time"

// Favorite marks a stall as saved by a user. Existence is the only state.
type Favorite struct {
	UserID    string    `json:"user_id"`
	StallID   string    `json:"stall_id"`
	CreatedAt time.Time `json:"created_at"`
}
