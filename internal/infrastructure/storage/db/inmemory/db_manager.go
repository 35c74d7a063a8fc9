package inmemory

import (
	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

// DbManager is an in-memory implementation of the RepoManager, meant for
// tests and for running the daemon without persistence.
type DbManager struct {
	listingRepository domain.ListingRepository
	saleRepository    domain.SaleRepository
}

// NewRepoManager returns a RepoManager backed by plain maps.
func NewRepoManager() ports.RepoManager {
	return &DbManager{
		listingRepository: NewListingRepositoryImpl(),
		saleRepository:    NewSaleRepositoryImpl(),
	}
}

func (d *DbManager) ListingRepository() domain.ListingRepository {
	return d.listingRepository
}

func (d *DbManager) SaleRepository() domain.SaleRepository {
	return d.saleRepository
}

func (d *DbManager) Close() {}
