package operator

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/escrowmarket/marketd/internal/core/application/pubsub"
	"github.com/escrowmarket/marketd/internal/core/application/settings"
	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

// MarketplaceInfo is the portable view of the marketplace configuration.
type MarketplaceInfo struct {
	Admin           string
	ExchangeAccount string
	FeePercentage   uint
	ActiveListings  int
}

// Service exposes the administrative surface of the exchange. Every
// state-changing method is gated on the administrative identity fixed at
// initialization.
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

// SetFeePercentage stores a new fee percentage in range [0, 100] applied to
// all subsequent settlements.
func (s *Service) SetFeePercentage(
	ctx context.Context, caller string, feePercentage uint,
) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}

	if err := s.settings.SetFeePercentage(feePercentage); err != nil {
		return err
	}

	log.Infof("fee percentage set to %d", feePercentage)
	return nil
}

// SetAssetRegistry replaces the external asset registry reference. The
// rotation is refused while any listing is active, since the custody of
// listed assets lives in the registry they were deposited through.
func (s *Service) SetAssetRegistry(
	ctx context.Context, caller string, registry ports.AssetRegistry,
) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}

	count, err := s.repoManager.ListingRepository().CountListings(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrRegistryInUse
	}

	if err := s.settings.SetRegistry(registry); err != nil {
		return err
	}

	log.Info("asset registry reference replaced")
	return nil
}

// GetInfo returns the current marketplace configuration.
func (s *Service) GetInfo(ctx context.Context) (*MarketplaceInfo, error) {
	count, err := s.repoManager.ListingRepository().CountListings(ctx)
	if err != nil {
		return nil, err
	}

	return &MarketplaceInfo{
		Admin:           s.settings.Admin(),
		ExchangeAccount: s.settings.ExchangeAccount(),
		FeePercentage:   s.settings.FeePercentage(),
		ActiveListings:  count,
	}, nil
}

// ListSales returns the whole history of settled sales.
func (s *Service) ListSales(
	ctx context.Context, caller string,
) ([]domain.Sale, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	return s.repoManager.SaleRepository().GetAllSales(ctx)
}

// AddWebhook registers a webhook endpoint to be notified about the given
// event topic.
func (s *Service) AddWebhook(
	ctx context.Context, caller, topic, endpoint, secret string,
) (string, error) {
	if err := s.requireAdmin(caller); err != nil {
		return "", err
	}

	return s.pubsubSvc.AddWebhook(topic, endpoint, secret)
}

// RemoveWebhook removes a webhook subscription by id.
func (s *Service) RemoveWebhook(
	ctx context.Context, caller, id string,
) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}

	return s.pubsubSvc.RemoveWebhook(id)
}

// ListWebhooks returns the webhook subscriptions for the given topic.
func (s *Service) ListWebhooks(
	ctx context.Context, caller, topic string,
) ([]ports.Subscription, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}

	return s.pubsubSvc.ListWebhooks(topic), nil
}

func (s *Service) requireAdmin(caller string) error {
	if !s.settings.IsAdmin(caller) {
		return domain.ErrUnauthorized
	}
	return nil
}
