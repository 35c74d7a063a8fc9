package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/escrowmarket/marketd/internal/core/domain"
)

type saleRepositoryImpl struct {
	db *DbManager
}

// NewSaleRepositoryImpl initializes a badger implementation of the
// domain.SaleRepository.
func NewSaleRepositoryImpl(db *DbManager) domain.SaleRepository {
	return saleRepositoryImpl{db: db}
}

func (r saleRepositoryImpl) AddSale(
	_ context.Context, sale domain.Sale,
) error {
	return r.db.SaleStore.Insert(sale.ID.String(), &sale)
}

func (r saleRepositoryImpl) GetAllSales(
	_ context.Context,
) ([]domain.Sale, error) {
	query := &badgerhold.Query{}
	query.SortBy("SettledAt")

	return r.findSales(query)
}

func (r saleRepositoryImpl) GetSalesForAsset(
	_ context.Context, assetID string,
) ([]domain.Sale, error) {
	query := badgerhold.Where("AssetID").Eq(assetID).SortBy("SettledAt")

	return r.findSales(query)
}

func (r saleRepositoryImpl) findSales(
	query *badgerhold.Query,
) ([]domain.Sale, error) {
	var sales []domain.Sale
	if err := r.db.SaleStore.Find(&sales, query); err != nil {
		return nil, err
	}

	return sales, nil
}
