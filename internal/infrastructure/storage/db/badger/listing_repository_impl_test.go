package dbbadger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrowmarket/marketd/internal/core/domain"
	dbbadger "github.com/escrowmarket/marketd/internal/infrastructure/storage/db/badger"
)

func newTestDb(t *testing.T) *dbbadger.DbManager {
	t.Helper()

	repoManager, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	return repoManager.(*dbbadger.DbManager)
}

func TestListingRepositoryImpl(t *testing.T) {
	ctx := context.Background()
	db := newTestDb(t)
	repo := db.ListingRepository()

	listing, err := domain.NewListing("asset-1", "seller", 100, 0)
	require.NoError(t, err)

	err = repo.AddListing(ctx, *listing)
	require.NoError(t, err)

	err = repo.AddListing(ctx, *listing)
	require.EqualError(t, err, domain.ErrListingAlreadyExists.Error())

	found, err := repo.GetListing(ctx, "asset-1")
	require.NoError(t, err)
	require.Equal(t, listing.Seller, found.Seller)
	require.Equal(t, listing.Price, found.Price)

	count, err := repo.CountListings(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	err = repo.UpdateListing(
		ctx, "asset-1", func(l *domain.Listing) (*domain.Listing, error) {
			return l, l.ChangePrice("seller", 150)
		},
	)
	require.NoError(t, err)

	found, err = repo.GetListing(ctx, "asset-1")
	require.NoError(t, err)
	require.Equal(t, uint64(150), found.Price)

	all, err := repo.GetAllListings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	err = repo.DeleteListing(ctx, "asset-1")
	require.NoError(t, err)

	_, err = repo.GetListing(ctx, "asset-1")
	require.EqualError(t, err, domain.ErrListingNotFound.Error())

	err = repo.DeleteListing(ctx, "asset-1")
	require.EqualError(t, err, domain.ErrListingNotFound.Error())
}

func TestSaleRepositoryImpl(t *testing.T) {
	ctx := context.Background()
	db := newTestDb(t)
	repo := db.SaleRepository()

	listing, err := domain.NewListing("asset-1", "seller", 100, 0)
	require.NoError(t, err)

	sale := domain.NewSale(*listing, "buyer", 5, 10)
	err = repo.AddSale(ctx, *sale)
	require.NoError(t, err)

	otherListing, err := domain.NewListing("asset-2", "seller", 50, 0)
	require.NoError(t, err)
	err = repo.AddSale(ctx, *domain.NewSale(*otherListing, "buyer", 5, 20))
	require.NoError(t, err)

	all, err := repo.GetAllSales(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	forAsset, err := repo.GetSalesForAsset(ctx, "asset-1")
	require.NoError(t, err)
	require.Len(t, forAsset, 1)
	require.Equal(t, sale.ID, forAsset[0].ID)
}
