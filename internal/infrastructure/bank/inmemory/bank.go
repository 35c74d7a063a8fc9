package inmemorybank

import (
	"context"
	"fmt"
	"sync"
)

// Bank is an in-memory settlement currency ledger, meant for tests and for
// running the daemon without a chain backend.
type Bank struct {
	lock     sync.RWMutex
	balances map[string]uint64
}

// NewBank returns a new bank with no balances.
func NewBank() *Bank {
	return &Bank{balances: map[string]uint64{}}
}

// Deposit credits the given identity.
func (b *Bank) Deposit(id string, amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.balances[id] += amount
}

func (b *Bank) Transfer(_ context.Context, from, to string, amount uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.balances[from] < amount {
		return fmt.Errorf(
			"insufficient funds: %s holds %d, needs %d",
			from, b.balances[from], amount,
		)
	}

	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

func (b *Bank) BalanceOf(_ context.Context, id string) (uint64, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.balances[id], nil
}
