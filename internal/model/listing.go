package model

import "time"

// Listing statuses. Only active listings are publicly visible.
const (
	ListingActive   = "active"
	ListingSold     = "sold"
	ListingInactive = "inactive"
)

// Listing types.
const (
	ListingProduct = "product"
	ListingService = "service"
)

// ListingStatuses is the allow-list for status filters and transitions.
var ListingStatuses = []string{ListingActive, ListingSold, ListingInactive}

// ListingTypes is the allow-list for the type filter.
var ListingTypes = []string{ListingProduct, ListingService}

// Listing is a product or service post owned by a vendor. Price and
// PriceLabel are mutually exclusive: a listing carries either a numeric
// price or a free-form label ("Negotiable", "From ₦500"), never both.
type Listing struct {
	ID          string     `json:"id"`
	VendorID    string     `json:"vendor_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
	Price       *float64   `json:"price,omitempty"`
	PriceLabel  *string    `json:"price_label,omitempty"`
	Negotiable  bool       `json:"negotiable"`
	Status      string     `json:"status"`
	Location    string     `json:"location"`
	ImageKey    string     `json:"image_key,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
