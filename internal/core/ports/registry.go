package ports

import "context"

// AssetRegistry is the exchange's view over the external registry that is
// the sole authority on where the custody of each non-fungible asset
// currently resides. The exchange never duplicates its bookkeeping, it only
// consults it and instructs transfers.
type AssetRegistry interface {
	// OwnerOf returns the identity currently holding the given asset.
	OwnerOf(ctx context.Context, assetID string) (string, error)
	// Transfer moves the custody of an asset between two identities. The
	// transfer must be atomic on the registry side and must invoke the
	// receiver's acceptance hook, if one is exposed, as part of it.
	Transfer(ctx context.Context, from, to, assetID string) error
}

// AssetReceiver is the acceptance hook the exchange exposes to the registry
// so that registry-initiated transfers into the exchange's custody succeed.
// Implementations must not mutate any state, the hook exists purely to
// satisfy the registry's transfer protocol.
type AssetReceiver interface {
	OnAssetReceived(operator, from, assetID string, data []byte) error
}
