package ports

import "context"

// Bank abstracts the settlement currency. Transfers are synchronous and
// either move the exact amount or fail, amounts are never truncated.
type Bank interface {
	// Transfer moves the given amount between two identities.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	// BalanceOf returns the settlement currency balance of an identity.
	BalanceOf(ctx context.Context, id string) (uint64, error)
}
