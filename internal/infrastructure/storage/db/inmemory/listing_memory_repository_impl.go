package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/escrowmarket/marketd/internal/core/domain"
)

// ListingRepositoryImpl represents an in memory storage for listings.
type ListingRepositoryImpl struct {
	listings map[string]domain.Listing

	lock *sync.RWMutex
}

// NewListingRepositoryImpl returns a new empty ListingRepositoryImpl.
func NewListingRepositoryImpl() *ListingRepositoryImpl {
	return &ListingRepositoryImpl{
		listings: map[string]domain.Listing{},
		lock:     &sync.RWMutex{},
	}
}

func (r *ListingRepositoryImpl) AddListing(
	_ context.Context, listing domain.Listing,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.listings[listing.AssetID]; ok {
		return domain.ErrListingAlreadyExists
	}

	r.listings[listing.AssetID] = listing
	return nil
}

func (r *ListingRepositoryImpl) GetListing(
	_ context.Context, assetID string,
) (*domain.Listing, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	listing, ok := r.listings[assetID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	return &listing, nil
}

func (r *ListingRepositoryImpl) GetAllListings(
	_ context.Context,
) ([]domain.Listing, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	listings := make([]domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		listings = append(listings, l)
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].AssetID < listings[j].AssetID
	})

	return listings, nil
}

func (r *ListingRepositoryImpl) CountListings(_ context.Context) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.listings), nil
}

func (r *ListingRepositoryImpl) UpdateListing(
	_ context.Context,
	assetID string,
	updateFn func(l *domain.Listing) (*domain.Listing, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	currentListing, ok := r.listings[assetID]
	if !ok {
		return domain.ErrListingNotFound
	}

	updatedListing, err := updateFn(&currentListing)
	if err != nil {
		return err
	}

	r.listings[assetID] = *updatedListing
	return nil
}

func (r *ListingRepositoryImpl) DeleteListing(
	_ context.Context, assetID string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.listings[assetID]; !ok {
		return domain.ErrListingNotFound
	}

	delete(r.listings, assetID)
	return nil
}
