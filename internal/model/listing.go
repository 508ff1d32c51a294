package model

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// MaxListingImages limits the number of images per listing.
const MaxListingImages = 5

// ListingStore defines persistence operations for listings.
type ListingStore interface {
	Create(ctx context.Context, listing Listing) (Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (Listing, error)
	Search(ctx context.Context, filter ListingFilter) ([]Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Listing is an item offered for sale, visible only inside its university.
type Listing struct {
	ID          uuid.UUID
	Title       string
	Description string
	Price       float64
	OwnerEmail  string
	University  string
	ImageURLs   []string
	Tags        []string
	CreatedAt   time.Time
}

// ListingFilter narrows a listing query. University is always required.
type ListingFilter struct {
	University string
	OwnerEmail string
	Title      string
	Tags       []string
	MinPrice   *float64
	MaxPrice   *float64
}

// ListingImage is an uploaded image file.
type ListingImage struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateListingParams contains parameters to create a listing.
type CreateListingParams struct {
	Title       string
	Description string
	Price       float64
	Tags        []string
	Images      []ListingImage
}
