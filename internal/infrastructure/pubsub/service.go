package webhookpubsub

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/escrowmarket/marketd/internal/core/ports"
	"github.com/escrowmarket/marketd/pkg/circuitbreaker"
)

// service notifies webhook endpoints about marketplace events. Deliveries
// are fanned out concurrently and routed through a circuit breaker, secured
// subscriptions get a JWT signed with their secret in the Authorization
// header.
type service struct {
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker

	lock        sync.RWMutex
	subs        map[string]Subscription
	subsByTopic map[string][]string
}

// NewService returns a SecurePubSub notifying subscribers over HTTP webhooks.
func NewService() ports.SecurePubSub {
	return &service{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		cb:          circuitbreaker.NewCircuitBreaker("webhookpubsub"),
		subs:        map[string]Subscription{},
		subsByTopic: map[string][]string{},
	}
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	ws.lock.Lock()
	defer ws.lock.Unlock()

	ws.subs[sub.ID] = *sub
	ws.subsByTopic[sub.Event] = append(ws.subsByTopic[sub.Event], sub.ID)
	return sub.ID, nil
}

func (ws *service) Unsubscribe(_, id string) error {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	sub, ok := ws.subs[id]
	if !ok {
		return fmt.Errorf("webhook not found")
	}

	delete(ws.subs, id)

	ids := ws.subsByTopic[sub.Event]
	for i, subID := range ids {
		if subID == id {
			ws.subsByTopic[sub.Event] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ws.subsByTopic[sub.Event]) <= 0 {
		delete(ws.subsByTopic, sub.Event)
	}
	return nil
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	ws.lock.RLock()
	defer ws.lock.RUnlock()

	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) Publish(topic string, message string) error {
	ws.lock.RLock()
	subs := ws.listSubscriptionsForTopic(topic)
	ws.lock.RUnlock()

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, message) })
	}
	return eg.Wait()
}

func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	subs := ws.getSubscriptionsForTopic(topic)
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic := ws.getSubscriptionsForTopic(ports.AnyTopic)
		subs = append(subs, subsForAnyTopic...)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}

func (ws *service) getSubscriptionsForTopic(topic string) subscriptions {
	if topic == ports.UnspecifiedTopic {
		subs := make(subscriptions, 0, len(ws.subs))
		for _, sub := range ws.subs {
			subs = append(subs, sub)
		}
		return subs
	}

	subs := make(subscriptions, 0, len(ws.subsByTopic[topic]))
	for _, id := range ws.subsByTopic[topic] {
		subs = append(subs, ws.subs[id])
	}
	return subs
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequest(
			http.MethodPost, sub.Endpoint, strings.NewReader(payload),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if sub.IsSecured() {
			token := jwt.New(jwt.SigningMethodHS256)
			tokenString, _ := token.SignedString([]byte(sub.Secret))
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tokenString))
		}

		res, err := ws.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(res.Body)
			return nil, fmt.Errorf("webhook delivery failed: %s", string(body))
		}
		return nil, nil
	})
	return err
}
