package ports

import "github.com/escrowmarket/marketd/internal/core/domain"

// RepoManager gives access to all the repositories of the daemon.
type RepoManager interface {
	ListingRepository() domain.ListingRepository
	SaleRepository() domain.SaleRepository

	Close()
}
