package domain

import "github.com/shopspring/decimal"

// Listing defines the record of an asset deposited with the exchange and
// offered for sale at a fixed price. A listing exists in the repository iff
// the exchange currently holds custody of the asset on the seller's behalf;
// removing the record and releasing custody always go together.
type Listing struct {
	// AssetID is the opaque unique identifier of the asset in the external registry.
	AssetID string
	// Seller is the identity of the depositing party, immutable for the life of the record.
	Seller string
	// Price is the asking price in the settlement currency, mutable only by the seller.
	Price uint64
	// CreatedAt is the unix timestamp of the deposit.
	CreatedAt int64
}

// NewListing returns a new listing for the given asset, seller and asking price.
func NewListing(assetID, seller string, price uint64, now int64) (*Listing, error) {
	if len(assetID) <= 0 {
		return nil, ErrInvalidAsset
	}
	if len(seller) <= 0 {
		return nil, ErrInvalidSeller
	}

	return &Listing{
		AssetID:   assetID,
		Seller:    seller,
		Price:     price,
		CreatedAt: now,
	}, nil
}

// ChangePrice updates the asking price. Only the seller is allowed to do it.
func (l *Listing) ChangePrice(caller string, newPrice uint64) error {
	if !l.IsSeller(caller) {
		return ErrNotSeller
	}

	l.Price = newPrice
	return nil
}

// IsSeller returns whether the given identity is the seller of the listing.
func (l *Listing) IsSeller(caller string) bool {
	return caller == l.Seller
}

// SplitPrice computes the exchange fee and the seller payout for a price and
// a fee percentage. The fee is floored, so for small prices it can be zero
// and the whole price goes to the seller.
func SplitPrice(price uint64, feePercentage uint) (fee, payout uint64) {
	fee = decimal.NewFromUint64(price).
		Mul(decimal.NewFromUint64(uint64(feePercentage))).
		Div(decimal.NewFromInt(100)).
		Floor().
		BigInt().
		Uint64()
	return fee, price - fee
}
