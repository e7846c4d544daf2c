package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Listing statuses reported by the server.
const (
	StatusAvailable = "available"
	StatusMatched   = "matched"
	StatusPickedUp  = "picked_up"
)

// FoodListing is a posted donation as returned by GET /food.
// Optional fields are empty strings when the server sends null.
type FoodListing struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Quantity    string `json:"quantity"`
	ShelfLife   string `json:"shelf_life"`
	PhotoURL    string `json:"photo_url"`
	PosterName  string `json:"poster_name"`
	Status      string `json:"status"`
}

// Key is the listing id as used in card selectors and claim commands.
func (f FoodListing) Key() string {
	return strconv.FormatInt(f.ID, 10)
}

// FoodForm is what the user fills in to post a listing. Quantity and
// ShelfLife are not typed by the user; they come from the estimation stand-in.
type FoodForm struct {
	// PhotoPath is a local file; empty means no photo.
	PhotoPath   string
	Description string
	Location    string
	Quantity    string
	ShelfLife   string
}

// ParseID converts a listing key typed by the user back to its id.
func ParseID(key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid listing id %q", key)
	}
	return id, nil
}
