package inmemory

import (
	"context"
	"sync"

	"github.com/escrowmarket/marketd/internal/core/domain"
)

// SaleRepositoryImpl represents an in memory storage for the sale history.
type SaleRepositoryImpl struct {
	sales []domain.Sale

	lock *sync.RWMutex
}

// NewSaleRepositoryImpl returns a new empty SaleRepositoryImpl.
func NewSaleRepositoryImpl() *SaleRepositoryImpl {
	return &SaleRepositoryImpl{
		sales: make([]domain.Sale, 0),
		lock:  &sync.RWMutex{},
	}
}

func (r *SaleRepositoryImpl) AddSale(
	_ context.Context, sale domain.Sale,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.sales = append(r.sales, sale)
	return nil
}

func (r *SaleRepositoryImpl) GetAllSales(
	_ context.Context,
) ([]domain.Sale, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	sales := make([]domain.Sale, len(r.sales))
	copy(sales, r.sales)

	return sales, nil
}

func (r *SaleRepositoryImpl) GetSalesForAsset(
	_ context.Context, assetID string,
) ([]domain.Sale, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	sales := make([]domain.Sale, 0)
	for _, s := range r.sales {
		if s.AssetID == assetID {
			sales = append(sales, s)
		}
	}

	return sales, nil
}
