package ports

// AnyTopic is the wildcard matching every event topic.
const AnyTopic = "*"

// UnspecifiedTopic ...
const UnspecifiedTopic = ""

// Publisher is the fire-and-forget sink for marketplace events. No
// acknowledgment, retry or delivery guarantee is assumed by the core.
type Publisher interface {
	// Publish emits a message for a certain topic.
	Publish(topic string, message string) error
}

// Subscription is the info of a client subscribed for a topic.
type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// SecurePubSub defines the methods of a pubsub service whose subscribers are
// notified at an endpoint of their choice, optionally authenticating the
// deliveries with a shared secret.
type SecurePubSub interface {
	Publisher

	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed
	// for a certain topic.
	ListSubscriptionsForTopic(topic string) []Subscription
}
