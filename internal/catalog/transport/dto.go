package transport

import "github.com/google/uuid"

// OfferingResponse is a public offering.
type OfferingResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
}

// CategoryGroup holds the offerings of one category in display order.
type CategoryGroup struct {
	Category  string             `json:"category"`
	Offerings []OfferingResponse `json:"offerings"`
}

// OfferingsResponse is returned by the public catalog route.
type OfferingsResponse struct {
	Categories []CategoryGroup `json:"categories"`
}
