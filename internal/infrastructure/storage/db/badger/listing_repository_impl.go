package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/escrowmarket/marketd/internal/core/domain"
)

type listingRepositoryImpl struct {
	db *DbManager
}

// NewListingRepositoryImpl initializes a badger implementation of the
// domain.ListingRepository, keyed by asset id.
func NewListingRepositoryImpl(db *DbManager) domain.ListingRepository {
	return listingRepositoryImpl{db: db}
}

func (r listingRepositoryImpl) AddListing(
	_ context.Context, listing domain.Listing,
) error {
	if err := r.db.ListingStore.Insert(listing.AssetID, &listing); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrListingAlreadyExists
		}
		return err
	}

	return nil
}

func (r listingRepositoryImpl) GetListing(
	_ context.Context, assetID string,
) (*domain.Listing, error) {
	return r.getListing(assetID)
}

func (r listingRepositoryImpl) GetAllListings(
	_ context.Context,
) ([]domain.Listing, error) {
	query := &badgerhold.Query{}
	query.SortBy("AssetID")

	var listings []domain.Listing
	if err := r.db.ListingStore.Find(&listings, query); err != nil {
		return nil, err
	}

	return listings, nil
}

func (r listingRepositoryImpl) CountListings(_ context.Context) (int, error) {
	count, err := r.db.ListingStore.Count(&domain.Listing{}, &badgerhold.Query{})
	if err != nil {
		return -1, err
	}

	return int(count), nil
}

func (r listingRepositoryImpl) UpdateListing(
	_ context.Context,
	assetID string,
	updateFn func(l *domain.Listing) (*domain.Listing, error),
) error {
	currentListing, err := r.getListing(assetID)
	if err != nil {
		return err
	}

	updatedListing, err := updateFn(currentListing)
	if err != nil {
		return err
	}

	return r.db.ListingStore.Update(assetID, updatedListing)
}

func (r listingRepositoryImpl) DeleteListing(
	_ context.Context, assetID string,
) error {
	if err := r.db.ListingStore.Delete(
		assetID, &domain.Listing{},
	); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrListingNotFound
		}
		return err
	}

	return nil
}

func (r listingRepositoryImpl) getListing(
	assetID string,
) (*domain.Listing, error) {
	var listing domain.Listing
	if err := r.db.ListingStore.Get(assetID, &listing); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}

	return &listing, nil
}
