package listing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrowmarket/marketd/internal/core/application/listing"
	"github.com/escrowmarket/marketd/internal/core/application/pubsub"
	"github.com/escrowmarket/marketd/internal/core/application/settings"
	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
	inmemoryregistry "github.com/escrowmarket/marketd/internal/infrastructure/registry/inmemory"
	"github.com/escrowmarket/marketd/internal/infrastructure/storage/db/inmemory"
)

const (
	adminID    = "admin"
	exchangeID = "exchange"
	sellerID   = "seller"
	otherID    = "someone-else"
	assetID    = "asset-1"
)

type fakePubSub struct {
	lock      sync.Mutex
	published map[string]int
}

func newFakePubSub() *fakePubSub {
	return &fakePubSub{published: map[string]int{}}
}

func (f *fakePubSub) Publish(topic, _ string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.published[topic]++
	return nil
}

func (f *fakePubSub) Subscribe(_, _, _ string) (string, error) { return "", nil }
func (f *fakePubSub) Unsubscribe(_, _ string) error            { return nil }
func (f *fakePubSub) ListSubscriptionsForTopic(_ string) []ports.Subscription {
	return nil
}

func (f *fakePubSub) count(topic string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.published[topic]
}

func newTestService(
	t *testing.T,
) (*listing.Service, *inmemoryregistry.Registry, *fakePubSub, ports.RepoManager) {
	t.Helper()

	registry := inmemoryregistry.NewRegistry()
	marketSettings, err := settings.NewSettings(adminID, exchangeID, 5, registry)
	require.NoError(t, err)

	fakePub := newFakePubSub()
	pubsubSvc, err := pubsub.NewService(fakePub)
	require.NoError(t, err)

	repoManager := inmemory.NewRepoManager()
	svc, err := listing.NewService(marketSettings, pubsubSvc, repoManager)
	require.NoError(t, err)

	registry.RegisterReceiver(exchangeID, svc)
	return svc, registry, fakePub, repoManager
}

func TestMakeListing(t *testing.T) {
	ctx := context.Background()
	svc, registry, fakePub, _ := newTestService(t)
	require.NoError(t, registry.MintAsset(sellerID, assetID))

	made, err := svc.MakeListing(ctx, sellerID, assetID, 100)
	require.NoError(t, err)
	require.Equal(t, sellerID, made.Seller)
	require.Equal(t, uint64(100), made.Price)

	// Custody moved to the exchange.
	owner, err := registry.OwnerOf(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, exchangeID, owner)
	require.Equal(t, 1, fakePub.count("LISTING_CREATED"))
}

func TestFailingMakeListing(t *testing.T) {
	ctx := context.Background()

	t.Run("already_listed", func(t *testing.T) {
		svc, registry, _, _ := newTestService(t)
		require.NoError(t, registry.MintAsset(sellerID, assetID))

		_, err := svc.MakeListing(ctx, sellerID, assetID, 100)
		require.NoError(t, err)

		_, err = svc.MakeListing(ctx, sellerID, assetID, 200)
		require.EqualError(t, err, domain.ErrListingAlreadyExists.Error())

		// The original listing is untouched.
		found, err := svc.GetListing(ctx, assetID)
		require.NoError(t, err)
		require.Equal(t, uint64(100), found.Price)
	})

	t.Run("not_asset_owner", func(t *testing.T) {
		svc, registry, _, repoManager := newTestService(t)
		require.NoError(t, registry.MintAsset(sellerID, assetID))

		_, err := svc.MakeListing(ctx, otherID, assetID, 100)
		require.EqualError(t, err, domain.ErrNotAssetOwner.Error())

		count, err := repoManager.ListingRepository().CountListings(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("unknown_asset", func(t *testing.T) {
		svc, _, _, repoManager := newTestService(t)

		_, err := svc.MakeListing(ctx, sellerID, assetID, 100)
		require.Error(t, err)

		// No ghost listing is left behind.
		count, err := repoManager.ListingRepository().CountListings(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})
}

func TestChangeListingPrice(t *testing.T) {
	ctx := context.Background()
	svc, registry, fakePub, _ := newTestService(t)
	require.NoError(t, registry.MintAsset(sellerID, assetID))

	_, err := svc.MakeListing(ctx, sellerID, assetID, 100)
	require.NoError(t, err)

	updated, err := svc.ChangeListingPrice(ctx, sellerID, assetID, 150)
	require.NoError(t, err)
	require.Equal(t, uint64(150), updated.Price)
	require.Equal(t, 1, fakePub.count("LISTING_PRICE_CHANGED"))

	_, err = svc.ChangeListingPrice(ctx, otherID, assetID, 1)
	require.EqualError(t, err, domain.ErrNotSeller.Error())

	found, err := svc.GetListing(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, uint64(150), found.Price)

	_, err = svc.ChangeListingPrice(ctx, sellerID, "unknown", 1)
	require.EqualError(t, err, domain.ErrListingNotFound.Error())
}

func TestRemoveListing(t *testing.T) {
	ctx := context.Background()
	svc, registry, fakePub, repoManager := newTestService(t)
	require.NoError(t, registry.MintAsset(sellerID, assetID))

	_, err := svc.MakeListing(ctx, sellerID, assetID, 100)
	require.NoError(t, err)

	err = svc.RemoveListing(ctx, otherID, assetID)
	require.EqualError(t, err, domain.ErrNotSeller.Error())

	err = svc.RemoveListing(ctx, sellerID, assetID)
	require.NoError(t, err)
	require.Equal(t, 1, fakePub.count("LISTING_REMOVED"))

	// Round-trip: custody back with the seller, no record left.
	owner, err := registry.OwnerOf(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, sellerID, owner)

	count, err := repoManager.ListingRepository().CountListings(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	err = svc.RemoveListing(ctx, sellerID, assetID)
	require.EqualError(t, err, domain.ErrListingNotFound.Error())
}

func TestReentrantRemoveListing(t *testing.T) {
	ctx := context.Background()

	// A registry whose outbound transfer re-enters the service must observe
	// the record already cleared.
	registry := &reentrantRegistry{}
	marketSettings, err := settings.NewSettings(adminID, exchangeID, 5, registry)
	require.NoError(t, err)
	pubsubSvc, err := pubsub.NewService(newFakePubSub())
	require.NoError(t, err)
	repoManager := inmemory.NewRepoManager()
	svc, err := listing.NewService(marketSettings, pubsubSvc, repoManager)
	require.NoError(t, err)

	listingRecord, err := domain.NewListing(assetID, sellerID, 100, 0)
	require.NoError(t, err)
	require.NoError(
		t, repoManager.ListingRepository().AddListing(ctx, *listingRecord),
	)

	var reentrantErr error
	registry.onTransfer = func() {
		reentrantErr = svc.RemoveListing(ctx, sellerID, assetID)
	}

	err = svc.RemoveListing(ctx, sellerID, assetID)
	require.NoError(t, err)
	require.EqualError(t, reentrantErr, domain.ErrListingNotFound.Error())
}

type reentrantRegistry struct {
	onTransfer func()
}

func (r *reentrantRegistry) OwnerOf(_ context.Context, _ string) (string, error) {
	return exchangeID, nil
}

func (r *reentrantRegistry) Transfer(_ context.Context, _, _, _ string) error {
	if r.onTransfer != nil {
		fn := r.onTransfer
		r.onTransfer = nil
		fn()
	}
	return nil
}
