package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrowmarket/marketd/internal/core/domain"
)

func TestNewListing(t *testing.T) {
	listing, err := domain.NewListing("asset-1", "seller", 100, 1700000000)
	require.NoError(t, err)
	require.NotNil(t, listing)
	require.Equal(t, "asset-1", listing.AssetID)
	require.Equal(t, "seller", listing.Seller)
	require.Equal(t, uint64(100), listing.Price)
}

func TestFailingNewListing(t *testing.T) {
	tests := []struct {
		name          string
		assetID       string
		seller        string
		expectedError error
	}{
		{"missing_asset", "", "seller", domain.ErrInvalidAsset},
		{"missing_seller", "asset-1", "", domain.ErrInvalidSeller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewListing(tt.assetID, tt.seller, 100, 0)
			require.EqualError(t, err, tt.expectedError.Error())
		})
	}
}

func TestChangePrice(t *testing.T) {
	listing, err := domain.NewListing("asset-1", "seller", 100, 0)
	require.NoError(t, err)

	err = listing.ChangePrice("seller", 150)
	require.NoError(t, err)
	require.Equal(t, uint64(150), listing.Price)

	err = listing.ChangePrice("someone-else", 1)
	require.EqualError(t, err, domain.ErrNotSeller.Error())
	require.Equal(t, uint64(150), listing.Price)
}

func TestSplitPrice(t *testing.T) {
	tests := []struct {
		name           string
		price          uint64
		feePercentage  uint
		expectedFee    uint64
		expectedPayout uint64
	}{
		{"exact_split", 100, 5, 5, 95},
		{"floored_fee", 7, 10, 0, 7},
		{"zero_fee_percentage", 100, 0, 0, 100},
		{"full_fee_percentage", 100, 100, 100, 0},
		{"zero_price", 0, 5, 0, 0},
		{"floored_large_price", 999, 33, 329, 670},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, payout := domain.SplitPrice(tt.price, tt.feePercentage)
			require.Equal(t, tt.expectedFee, fee)
			require.Equal(t, tt.expectedPayout, payout)
			require.Equal(t, tt.price, fee+payout)
		})
	}
}

func TestNewSale(t *testing.T) {
	listing, err := domain.NewListing("asset-1", "seller", 100, 0)
	require.NoError(t, err)

	sale := domain.NewSale(*listing, "buyer", 5, 1700000000)
	require.NotNil(t, sale)
	require.Equal(t, "asset-1", sale.AssetID)
	require.Equal(t, "seller", sale.Seller)
	require.Equal(t, "buyer", sale.Buyer)
	require.Equal(t, uint64(100), sale.Price)
	require.Equal(t, uint64(5), sale.Fee)
	require.Equal(t, uint64(95), sale.Payout)
	require.NotEmpty(t, sale.ID)
}
