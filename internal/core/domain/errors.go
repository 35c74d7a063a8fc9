package domain

import "errors"

var (
	// ErrUnauthorized is thrown when a caller invokes an admin-only operation.
	ErrUnauthorized = errors.New("caller is not the exchange administrator")
	// ErrInvalidFeePercentage is thrown when setting a fee outside the [0, 100] range.
	ErrInvalidFeePercentage = errors.New("fee percentage must be in range [0, 100]")
	// ErrListingAlreadyExists is thrown when creating a listing for an asset already on sale.
	ErrListingAlreadyExists = errors.New("asset is already listed")
	// ErrListingNotFound is thrown when operating on an asset with no active listing.
	ErrListingNotFound = errors.New("listing not found")
	// ErrNotAssetOwner is thrown when a caller tries to list an asset he does not own.
	ErrNotAssetOwner = errors.New("caller does not own the asset")
	// ErrNotSeller is thrown when someone other than the seller mutates a listing.
	ErrNotSeller = errors.New("caller is not the seller of the listing")
	// ErrSelfPurchase is thrown when a seller tries to buy his own listing.
	ErrSelfPurchase = errors.New("seller cannot buy his own listing")
	// ErrPaymentMismatch is thrown when the tendered amount differs from the asking price.
	ErrPaymentMismatch = errors.New("tendered amount does not match the asking price")
	// ErrCustodyTransferFailed ...
	ErrCustodyTransferFailed = errors.New("asset custody transfer failed")
	// ErrPaymentTransferFailed ...
	ErrPaymentTransferFailed = errors.New("payment transfer failed")
	// ErrRegistryInUse is thrown when rotating the asset registry while listings are active.
	ErrRegistryInUse = errors.New("cannot replace asset registry while listings are active")
	// ErrInvalidAsset ...
	ErrInvalidAsset = errors.New("asset id must not be empty")
	// ErrInvalidSeller ...
	ErrInvalidSeller = errors.New("seller identity must not be empty")
)
