package domain

import "github.com/google/uuid"

// Sale is the persisted outcome of a settled purchase.
type Sale struct {
	ID        uuid.UUID
	AssetID   string
	Seller    string
	Buyer     string
	Price     uint64
	Fee       uint64
	Payout    uint64
	SettledAt int64
}

// NewSale returns the sale record for a listing bought by the given buyer.
// The fee split is computed here, at purchase time, with the fee percentage
// in force at the moment of settlement.
func NewSale(listing Listing, buyer string, feePercentage uint, now int64) *Sale {
	fee, payout := SplitPrice(listing.Price, feePercentage)
	return &Sale{
		ID:        uuid.New(),
		AssetID:   listing.AssetID,
		Seller:    listing.Seller,
		Buyer:     buyer,
		Price:     listing.Price,
		Fee:       fee,
		Payout:    payout,
		SettledAt: now,
	}
}
