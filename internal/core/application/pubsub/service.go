package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

const (
	eventListingCreated      = "LISTING_CREATED"
	eventListingPriceChanged = "LISTING_PRICE_CHANGED"
	eventListingRemoved      = "LISTING_REMOVED"
	eventNFTSold             = "NFT_SOLD"
)

// Service publishes the marketplace lifecycle events. Deliveries are
// fire-and-forget: events are emitted in the same order operations complete
// and a failing publisher never affects the operation that emitted.
type Service struct {
	securePubSub ports.SecurePubSub
	publishers   []ports.Publisher
}

func NewService(
	securePubSub ports.SecurePubSub, publishers ...ports.Publisher,
) (*Service, error) {
	if securePubSub == nil {
		return nil, fmt.Errorf("missing secure pubsub")
	}

	return &Service{securePubSub, publishers}, nil
}

// AddWebhook registers a new webhook endpoint for the given event topic.
func (s *Service) AddWebhook(topic, endpoint, secret string) (string, error) {
	return s.securePubSub.Subscribe(topic, endpoint, secret)
}

// RemoveWebhook removes a webhook subscription by id.
func (s *Service) RemoveWebhook(id string) error {
	return s.securePubSub.Unsubscribe(ports.UnspecifiedTopic, id)
}

// ListWebhooks returns the webhook subscriptions for the given topic.
func (s *Service) ListWebhooks(topic string) []ports.Subscription {
	return s.securePubSub.ListSubscriptionsForTopic(topic)
}

func (s *Service) PublishListingCreatedEvent(listing domain.Listing) error {
	payload := map[string]interface{}{
		"event":    eventListingCreated,
		"asset_id": listing.AssetID,
		"seller":   listing.Seller,
		"price":    listing.Price,
	}
	return s.publish(eventListingCreated, payload)
}

func (s *Service) PublishListingPriceChangedEvent(
	listing domain.Listing, oldPrice uint64,
) error {
	payload := map[string]interface{}{
		"event":     eventListingPriceChanged,
		"asset_id":  listing.AssetID,
		"seller":    listing.Seller,
		"old_price": oldPrice,
		"new_price": listing.Price,
	}
	return s.publish(eventListingPriceChanged, payload)
}

func (s *Service) PublishListingRemovedEvent(listing domain.Listing) error {
	payload := map[string]interface{}{
		"event":    eventListingRemoved,
		"asset_id": listing.AssetID,
		"seller":   listing.Seller,
	}
	return s.publish(eventListingRemoved, payload)
}

func (s *Service) PublishNFTSoldEvent(sale domain.Sale) error {
	payload := map[string]interface{}{
		"event":    eventNFTSold,
		"asset_id": sale.AssetID,
		"seller":   sale.Seller,
		"buyer":    sale.Buyer,
		"price":    sale.Price,
		"fee":      sale.Fee,
		"payout":   sale.Payout,
	}
	return s.publish(eventNFTSold, payload)
}

func (s *Service) publish(topic string, payload map[string]interface{}) error {
	message, _ := json.Marshal(payload)

	var lastErr error
	if err := s.securePubSub.Publish(topic, string(message)); err != nil {
		lastErr = err
	}
	for _, pub := range s.publishers {
		if err := pub.Publish(topic, string(message)); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
