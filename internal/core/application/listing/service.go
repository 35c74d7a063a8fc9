package listing

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/escrowmarket/marketd/internal/core/application/pubsub"
	"github.com/escrowmarket/marketd/internal/core/application/settings"
	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
	"github.com/escrowmarket/marketd/pkg/stats"
)

// Service manages the lifecycle of listings: deposit of custody with an
// asking price, price changes by the seller and seller-initiated removal.
// The reentrancy discipline is structural: the repository is mutated before
// any custody transfer hands control to the external registry, with the sole
// exception of MakeListing that must confirm the inbound transfer before
// inserting the record, so that a failed deposit never produces a ghost
// listing.
type Service struct {
	settings    *settings.Settings
	pubsubSvc   *pubsub.Service
	repoManager ports.RepoManager
}

func NewService(
	settingsSvc *settings.Settings,
	pubsubSvc *pubsub.Service,
	repoManager ports.RepoManager,
) (*Service, error) {
	if settingsSvc == nil {
		return nil, fmt.Errorf("missing settings")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}

	return &Service{settingsSvc, pubsubSvc, repoManager}, nil
}

// MakeListing deposits the custody of an asset with the exchange and puts it
// on sale at the given asking price. The caller must currently own the asset
// per the external registry and the asset must not be listed already. The
// record is inserted only once the inbound custody transfer is confirmed.
func (s *Service) MakeListing(
	ctx context.Context, caller, assetID string, price uint64,
) (*domain.Listing, error) {
	repo := s.repoManager.ListingRepository()
	registry := s.settings.Registry()

	if _, err := repo.GetListing(ctx, assetID); err == nil {
		return nil, domain.ErrListingAlreadyExists
	} else if err != domain.ErrListingNotFound {
		return nil, err
	}

	owner, err := registry.OwnerOf(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("retrieving asset owner: %w", err)
	}
	if owner != caller {
		return nil, domain.ErrNotAssetOwner
	}

	listing, err := domain.NewListing(
		assetID, caller, price, time.Now().Unix(),
	)
	if err != nil {
		return nil, err
	}

	if err := registry.Transfer(
		ctx, caller, s.settings.ExchangeAccount(), assetID,
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCustodyTransferFailed, err)
	}

	if err := repo.AddListing(ctx, *listing); err != nil {
		// Deposit confirmed but the record cannot be stored, hand the
		// custody back before failing.
		if rbErr := registry.Transfer(
			ctx, s.settings.ExchangeAccount(), caller, assetID,
		); rbErr != nil {
			log.WithError(rbErr).Errorf(
				"failed to return custody of asset %s after aborted listing",
				assetID,
			)
		}
		return nil, err
	}

	if err := s.pubsubSvc.PublishListingCreatedEvent(*listing); err != nil {
		log.WithError(err).Warn("failed to publish LISTING_CREATED event")
	}
	stats.ListingsCreated.Inc()

	log.Debugf("asset %s listed by %s at price %d", assetID, caller, price)
	return listing, nil
}

// ChangeListingPrice updates the asking price of an active listing. Only the
// seller is allowed to do it.
func (s *Service) ChangeListingPrice(
	ctx context.Context, caller, assetID string, newPrice uint64,
) (*domain.Listing, error) {
	repo := s.repoManager.ListingRepository()

	var updatedListing *domain.Listing
	var oldPrice uint64
	if err := repo.UpdateListing(
		ctx, assetID, func(l *domain.Listing) (*domain.Listing, error) {
			oldPrice = l.Price
			if err := l.ChangePrice(caller, newPrice); err != nil {
				return nil, err
			}
			updatedListing = l
			return l, nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.pubsubSvc.PublishListingPriceChangedEvent(
		*updatedListing, oldPrice,
	); err != nil {
		log.WithError(err).Warn("failed to publish LISTING_PRICE_CHANGED event")
	}
	stats.PriceChanges.Inc()

	return updatedListing, nil
}

// RemoveListing takes an asset off sale and returns its custody to the
// seller. The record is cleared before the custody transfer calls out to the
// registry, so that a reentrant call observes no active listing. If the
// transfer fails the record is restored and the operation fails as a unit.
func (s *Service) RemoveListing(
	ctx context.Context, caller, assetID string,
) error {
	repo := s.repoManager.ListingRepository()

	listing, err := repo.GetListing(ctx, assetID)
	if err != nil {
		return err
	}
	if !listing.IsSeller(caller) {
		return domain.ErrNotSeller
	}

	if err := repo.DeleteListing(ctx, assetID); err != nil {
		return err
	}

	if err := s.settings.Registry().Transfer(
		ctx, s.settings.ExchangeAccount(), caller, assetID,
	); err != nil {
		if rbErr := repo.AddListing(ctx, *listing); rbErr != nil {
			log.WithError(rbErr).Errorf(
				"failed to restore listing of asset %s after failed custody return",
				assetID,
			)
		}
		return fmt.Errorf("%w: %v", domain.ErrCustodyTransferFailed, err)
	}

	if err := s.pubsubSvc.PublishListingRemovedEvent(*listing); err != nil {
		log.WithError(err).Warn("failed to publish LISTING_REMOVED event")
	}
	stats.ListingsRemoved.Inc()

	log.Debugf("asset %s delisted by %s", assetID, caller)
	return nil
}

// GetListing returns the active listing of the given asset.
func (s *Service) GetListing(
	ctx context.Context, assetID string,
) (*domain.Listing, error) {
	return s.repoManager.ListingRepository().GetListing(ctx, assetID)
}

// ListListings returns all active listings.
func (s *Service) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return s.repoManager.ListingRepository().GetAllListings(ctx)
}

// OnAssetReceived implements the acceptance hook of the registry's transfer
// protocol. Inbound transfers are acknowledged unconditionally, the exchange
// trusts only its own listing bookkeeping to interpret custody.
func (s *Service) OnAssetReceived(
	operator, from, assetID string, data []byte,
) error {
	return nil
}
