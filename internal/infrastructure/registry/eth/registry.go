package ethregistry

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

const erc721ABI = `[
	{"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"safeTransferFrom","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Registry is the ERC-721 implementation of the asset registry gateway.
// Transfers are signed with the exchange key, the contract must have the
// exchange approved as operator for deposits to succeed. Asset ids are the
// decimal representation of the token id, identities are hex addresses.
type Registry struct {
	client     *ethclient.Client
	contract   *bind.BoundContract
	privateKey *ecdsa.PrivateKey
	chainID    *big.Int
}

// NewRegistry connects to the given RPC node and binds the ERC-721 contract
// at the given address.
func NewRegistry(
	rpcURL, contractAddress string, privateKey *ecdsa.PrivateKey,
) (*Registry, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to rpc node: %w", err)
	}

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("retrieving chain id: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing ERC-721 ABI: %w", err)
	}

	contract := bind.NewBoundContract(
		common.HexToAddress(contractAddress), parsedABI, client, client, client,
	)

	return &Registry{
		client:     client,
		contract:   contract,
		privateKey: privateKey,
		chainID:    chainID,
	}, nil
}

var _ ports.AssetRegistry = (*Registry)(nil)

func (r *Registry) OwnerOf(ctx context.Context, assetID string) (string, error) {
	tokenID, err := parseTokenID(assetID)
	if err != nil {
		return "", err
	}

	var out []interface{}
	if err := r.contract.Call(
		&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID,
	); err != nil {
		return "", fmt.Errorf("calling ownerOf: %w", err)
	}

	owner := out[0].(common.Address)
	return owner.Hex(), nil
}

func (r *Registry) Transfer(ctx context.Context, from, to, assetID string) error {
	tokenID, err := parseTokenID(assetID)
	if err != nil {
		return err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(r.privateKey, r.chainID)
	if err != nil {
		return fmt.Errorf("creating transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := r.contract.Transact(
		opts, "safeTransferFrom",
		common.HexToAddress(from), common.HexToAddress(to), tokenID,
	)
	if err != nil {
		return fmt.Errorf("sending safeTransferFrom: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, r.client, tx)
	if err != nil {
		return fmt.Errorf("waiting for transfer tx %s: %w", tx.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transfer tx %s reverted", tx.Hash())
	}

	return nil
}

func parseTokenID(assetID string) (*big.Int, error) {
	tokenID, ok := new(big.Int).SetString(assetID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid asset id %s", assetID)
	}
	return tokenID, nil
}
