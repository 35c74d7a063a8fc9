package trade

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

// Service is the settlement engine: it orchestrates the atomic exchange of
// payment for custody triggered by a purchase. The listing record is cleared
// before any transfer hands control to the bank or the registry, so that
// reentrant calls observe no active listing, and every transfer leg has an
// explicit compensation so that a failure in any step leaves funds, custody
// and the listing exactly as they were before the call.
type Service struct {
	settings    *settings.Settings
	pubsubSvc   *pubsub.Service
	repoManager ports.RepoManager
	bank        ports.Bank
}

func NewService(
	settingsSvc *settings.Settings,
	pubsubSvc *pubsub.Service,
	repoManager ports.RepoManager,
	bank ports.Bank,
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
	if bank == nil {
		return nil, fmt.Errorf("missing bank")
	}

	return &Service{settingsSvc, pubsubSvc, repoManager, bank}, nil
}

// PreviewPurchase returns the price of a listing along with the fee and the
// seller payout a purchase would settle with at the current fee percentage.
func (s *Service) PreviewPurchase(
	ctx context.Context, assetID string,
) (price, fee, payout uint64, err error) {
	listing, err := s.repoManager.ListingRepository().GetListing(ctx, assetID)
	if err != nil {
		return 0, 0, 0, err
	}

	fee, payout = domain.SplitPrice(listing.Price, s.settings.FeePercentage())
	return listing.Price, fee, payout, nil
}

// BuyListing purchases a listed asset by paying exactly its asking price.
// The tendered amount is split into the exchange fee, forwarded to the
// administrator, and the seller payout. The operation settles as a single
// all-or-nothing unit: any failing transfer undoes every prior effect of
// this invocation, including the clearing of the listing record.
func (s *Service) BuyListing(
	ctx context.Context, caller, assetID string, tenderedAmount uint64,
) (*domain.Sale, error) {
	repo := s.repoManager.ListingRepository()

	listing, err := repo.GetListing(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if listing.IsSeller(caller) {
		return nil, domain.ErrSelfPurchase
	}
	if tenderedAmount != listing.Price {
		return nil, domain.ErrPaymentMismatch
	}

	sale := domain.NewSale(
		*listing, caller, s.settings.FeePercentage(), time.Now().Unix(),
	)

	// Clear the record before any external value transfer. From here on a
	// reentrant call for the same asset observes no active listing.
	if err := repo.DeleteListing(ctx, assetID); err != nil {
		return nil, err
	}

	if err := s.settle(ctx, listing, sale); err != nil {
		stats.FailedSettlements.Inc()
		return nil, err
	}

	if err := s.repoManager.SaleRepository().AddSale(ctx, *sale); err != nil {
		log.WithError(err).Errorf(
			"failed to persist sale record for asset %s", assetID,
		)
	}

	if err := s.pubsubSvc.PublishNFTSoldEvent(*sale); err != nil {
		log.WithError(err).Warn("failed to publish NFT_SOLD event")
	}
	stats.SalesSettled.Inc()
	stats.SettledVolume.Add(float64(sale.Price))

	log.Debugf(
		"asset %s sold by %s to %s at price %d (fee %d)",
		assetID, sale.Seller, sale.Buyer, sale.Price, sale.Fee,
	)
	return sale, nil
}

// settle executes the three transfer legs of a purchase, compensating the
// completed ones and restoring the listing record whenever a later leg
// fails.
func (s *Service) settle(
	ctx context.Context, listing *domain.Listing, sale *domain.Sale,
) error {
	if err := s.bank.Transfer(
		ctx, sale.Buyer, sale.Seller, sale.Payout,
	); err != nil {
		s.restoreListing(ctx, listing)
		return fmt.Errorf("%w: %v", domain.ErrPaymentTransferFailed, err)
	}

	if sale.Fee > 0 {
		if err := s.bank.Transfer(
			ctx, sale.Buyer, s.settings.Admin(), sale.Fee,
		); err != nil {
			s.refund(ctx, sale.Seller, sale.Buyer, sale.Payout)
			s.restoreListing(ctx, listing)
			return fmt.Errorf("%w: %v", domain.ErrPaymentTransferFailed, err)
		}
	}

	if err := s.settings.Registry().Transfer(
		ctx, s.settings.ExchangeAccount(), sale.Buyer, listing.AssetID,
	); err != nil {
		s.refund(ctx, sale.Seller, sale.Buyer, sale.Payout)
		if sale.Fee > 0 {
			s.refund(ctx, s.settings.Admin(), sale.Buyer, sale.Fee)
		}
		s.restoreListing(ctx, listing)
		return fmt.Errorf("%w: %v", domain.ErrCustodyTransferFailed, err)
	}

	return nil
}

func (s *Service) restoreListing(ctx context.Context, listing *domain.Listing) {
	if err := s.repoManager.ListingRepository().AddListing(
		ctx, *listing,
	); err != nil {
		log.WithError(err).Errorf(
			"failed to restore listing of asset %s after failed settlement",
			listing.AssetID,
		)
	}
}

func (s *Service) refund(ctx context.Context, from, to string, amount uint64) {
	if err := s.bank.Transfer(ctx, from, to, amount); err != nil {
		log.WithError(err).Errorf(
			"failed to refund %d to %s after failed settlement", amount, to,
		)
	}
}
