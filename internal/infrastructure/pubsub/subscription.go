package webhookpubsub

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/escrowmarket/marketd/internal/core/ports"
)

// Subscription is a webhook endpoint registered for an event topic.
type Subscription struct {
	ID       string
	Event    string
	Endpoint string
	Secret   string
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	if len(event) <= 0 {
		return nil, fmt.Errorf("missing event")
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid webhook endpoint, must be an http(s) URI")
	}
	return &Subscription{
		ID:       uuid.New().String(),
		Event:    event,
		Endpoint: endpoint,
		Secret:   secret,
	}, nil
}

func (s *Subscription) Topic() string { return s.Event }

func (s *Subscription) Id() string { return s.ID }

func (s *Subscription) NotifyAt() string { return s.Endpoint }

func (s *Subscription) IsSecured() bool { return len(s.Secret) > 0 }

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, &sub)
	}
	return subs
}
