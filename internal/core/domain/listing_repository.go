package domain

import "context"

// ListingRepository is the abstraction for any kind of database intended to
// persist Listings. The repository exclusively owns listing records and
// enforces at most one record per asset.
type ListingRepository interface {
	// AddListing inserts a new listing. It returns ErrListingAlreadyExists
	// if a record for the same asset is already stored.
	AddListing(ctx context.Context, listing Listing) error
	// GetListing returns the listing for the given asset, or
	// ErrListingNotFound if none is stored.
	GetListing(ctx context.Context, assetID string) (*Listing, error)
	// GetAllListings returns all stored listings.
	GetAllListings(ctx context.Context) ([]Listing, error)
	// CountListings returns the number of stored listings.
	CountListings(ctx context.Context) (int, error)
	// UpdateListing commits the changes made by the update closure to the
	// listing of the given asset in a transactional way.
	UpdateListing(
		ctx context.Context,
		assetID string, updateFn func(l *Listing) (*Listing, error),
	) error
	// DeleteListing removes the listing of the given asset. It returns
	// ErrListingNotFound if none is stored.
	DeleteListing(ctx context.Context, assetID string) error
}
