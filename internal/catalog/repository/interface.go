package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Offering is one service shown on the quote form.
type Offering struct {
	ID          uuid.UUID
	Category    string
	Name        string
	Slug        string
	Description *string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reader provides read-only access to offerings.
type Reader interface {
	// ListActive returns active offerings ordered by category, sort order, then name.
	ListActive(ctx context.Context) ([]Offering, error)
	GetBySlug(ctx context.Context, slug string) (Offering, error)
}
