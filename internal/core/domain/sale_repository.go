package domain

import "context"

// SaleRepository is the abstraction for any kind of database intended to
// persist the history of settled sales.
type SaleRepository interface {
	// AddSale appends a new settled sale to the history.
	AddSale(ctx context.Context, sale Sale) error
	// GetAllSales returns the whole sale history.
	GetAllSales(ctx context.Context) ([]Sale, error)
	// GetSalesForAsset returns all settled sales of the given asset.
	GetSalesForAsset(ctx context.Context, assetID string) ([]Sale, error)
}
