package inmemoryregistry

import (
	"context"
	"fmt"
	"sync"

	"github.com/escrowmarket/marketd/internal/core/ports"
)

// Registry is an in-memory asset registry, meant for tests and for running
// the daemon without a chain backend. It tracks the owner of each asset and
// dispatches transfers to the acceptance hook of the receiving identity, if
// one is registered, as part of the transfer itself.
type Registry struct {
	lock      sync.RWMutex
	owners    map[string]string
	receivers map[string]ports.AssetReceiver
}

// NewRegistry returns a new empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:    map[string]string{},
		receivers: map[string]ports.AssetReceiver{},
	}
}

// MintAsset registers a new asset owned by the given identity.
func (r *Registry) MintAsset(owner, assetID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.owners[assetID]; ok {
		return fmt.Errorf("asset %s already minted", assetID)
	}

	r.owners[assetID] = owner
	return nil
}

// RegisterReceiver exposes the acceptance hook of an identity to the
// registry's transfer protocol.
func (r *Registry) RegisterReceiver(id string, receiver ports.AssetReceiver) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.receivers[id] = receiver
}

func (r *Registry) OwnerOf(_ context.Context, assetID string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	owner, ok := r.owners[assetID]
	if !ok {
		return "", fmt.Errorf("unknown asset %s", assetID)
	}
	return owner, nil
}

func (r *Registry) Transfer(_ context.Context, from, to, assetID string) error {
	r.lock.Lock()
	owner, ok := r.owners[assetID]
	if !ok {
		r.lock.Unlock()
		return fmt.Errorf("unknown asset %s", assetID)
	}
	if owner != from {
		r.lock.Unlock()
		return fmt.Errorf("asset %s is not held by %s", assetID, from)
	}
	r.owners[assetID] = to
	receiver := r.receivers[to]
	r.lock.Unlock()

	// The hook runs outside the lock: it may re-enter the exchange.
	if receiver != nil {
		if err := receiver.OnAssetReceived(from, from, assetID, nil); err != nil {
			r.lock.Lock()
			r.owners[assetID] = from
			r.lock.Unlock()
			return fmt.Errorf("transfer rejected by receiver: %w", err)
		}
	}

	return nil
}
