package model

import "time"

// Product is a catalog entry. ID is assigned by storage on first insert and
// never reassigned. ExternalID comes from the source system (or is synthesized
// from the clock for manually entered products) and is unique across all
// products; it is the conflict key for upserts.
type Product struct {
	ID          int64     `json:"id"`
	ExternalID  int64     `json:"externalId"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Description *string   `json:"description,omitempty"`
	Variants    *string   `json:"variants,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
