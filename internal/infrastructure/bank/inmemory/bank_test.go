package inmemorybank_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	inmemorybank "github.com/escrowmarket/marketd/internal/infrastructure/bank/inmemory"
)

func TestBankTransfer(t *testing.T) {
	ctx := context.Background()
	bank := inmemorybank.NewBank()
	bank.Deposit("alice", 100)

	err := bank.Transfer(ctx, "alice", "bob", 60)
	require.NoError(t, err)

	aliceBalance, err := bank.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), aliceBalance)

	bobBalance, err := bank.BalanceOf(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, uint64(60), bobBalance)

	// Insufficient funds leave both balances untouched.
	err = bank.Transfer(ctx, "alice", "bob", 41)
	require.Error(t, err)

	aliceBalance, err = bank.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), aliceBalance)
}
