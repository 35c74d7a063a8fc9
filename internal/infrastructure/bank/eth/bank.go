package ethbank

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/escrowmarket/marketd/internal/core/ports"
)

const erc20ABI = `[
	{"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// Bank is the ERC-20 implementation of the settlement currency. Transfers
// are executed with transferFrom signed by the exchange key, buyers must
// have approved the exchange as spender for at least the tendered amount.
type Bank struct {
	client     *ethclient.Client
	contract   *bind.BoundContract
	privateKey *ecdsa.PrivateKey
	chainID    *big.Int
}

// NewBank connects to the given RPC node and binds the ERC-20 settlement
// token at the given address.
func NewBank(
	rpcURL, contractAddress string, privateKey *ecdsa.PrivateKey,
) (*Bank, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to rpc node: %w", err)
	}

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("retrieving chain id: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing ERC-20 ABI: %w", err)
	}

	contract := bind.NewBoundContract(
		common.HexToAddress(contractAddress), parsedABI, client, client, client,
	)

	return &Bank{
		client:     client,
		contract:   contract,
		privateKey: privateKey,
		chainID:    chainID,
	}, nil
}

var _ ports.Bank = (*Bank)(nil)

func (b *Bank) Transfer(
	ctx context.Context, from, to string, amount uint64,
) error {
	opts, err := bind.NewKeyedTransactorWithChainID(b.privateKey, b.chainID)
	if err != nil {
		return fmt.Errorf("creating transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := b.contract.Transact(
		opts, "transferFrom",
		common.HexToAddress(from), common.HexToAddress(to),
		new(big.Int).SetUint64(amount),
	)
	if err != nil {
		return fmt.Errorf("sending transferFrom: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, b.client, tx)
	if err != nil {
		return fmt.Errorf("waiting for transfer tx %s: %w", tx.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transfer tx %s reverted", tx.Hash())
	}

	return nil
}

func (b *Bank) BalanceOf(ctx context.Context, id string) (uint64, error) {
	var out []interface{}
	if err := b.contract.Call(
		&bind.CallOpts{Context: ctx}, &out, "balanceOf",
		common.HexToAddress(id),
	); err != nil {
		return 0, fmt.Errorf("calling balanceOf: %w", err)
	}

	balance := out[0].(*big.Int)
	return balance.Uint64(), nil
}
