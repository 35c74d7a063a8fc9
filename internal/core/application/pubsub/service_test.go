package pubsub_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrowmarket/marketd/internal/core/application/pubsub"
	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

type recordingPubSub struct {
	topics   []string
	messages []string
}

func (r *recordingPubSub) Publish(topic, message string) error {
	r.topics = append(r.topics, topic)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingPubSub) Subscribe(_, _, _ string) (string, error) {
	return "", nil
}
func (r *recordingPubSub) Unsubscribe(_, _ string) error { return nil }
func (r *recordingPubSub) ListSubscriptionsForTopic(_ string) []ports.Subscription {
	return nil
}

func TestPublishEvents(t *testing.T) {
	rec := &recordingPubSub{}
	extra := &recordingPubSub{}
	svc, err := pubsub.NewService(rec, extra)
	require.NoError(t, err)

	listing, err := domain.NewListing("asset-1", "seller", 100, 0)
	require.NoError(t, err)

	require.NoError(t, svc.PublishListingCreatedEvent(*listing))
	require.NoError(t, svc.PublishListingPriceChangedEvent(*listing, 50))
	require.NoError(t, svc.PublishListingRemovedEvent(*listing))
	require.NoError(t, svc.PublishNFTSoldEvent(
		*domain.NewSale(*listing, "buyer", 5, 0),
	))

	expectedTopics := []string{
		"LISTING_CREATED", "LISTING_PRICE_CHANGED",
		"LISTING_REMOVED", "NFT_SOLD",
	}
	require.Equal(t, expectedTopics, rec.topics)
	// Every extra publisher receives the same events in the same order.
	require.Equal(t, expectedTopics, extra.topics)

	var sold map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rec.messages[3]), &sold))
	require.Equal(t, "NFT_SOLD", sold["event"])
	require.Equal(t, "asset-1", sold["asset_id"])
	require.Equal(t, "seller", sold["seller"])
	require.Equal(t, "buyer", sold["buyer"])
	require.EqualValues(t, 100, sold["price"])
	require.EqualValues(t, 5, sold["fee"])
}
