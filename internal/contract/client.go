// Package contract binds the token ABI to an address and exposes the two
// methods the transfer workflow needs.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"token-transfer-wallet/internal/wallet"
)

// TokenAddress is the ERC-20 token the service transfers (Tether USD).
const TokenAddress = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrReverted       = errors.New("transaction reverted")
)

type Handle interface {
	BalanceOf(ctx context.Context, account string) (*big.Int, error)
	// Transfer submits transfer(receiver, amount) from the bound sender and
	// waits for the receipt.
	Transfer(ctx context.Context, receiver string, amount *big.Int) (*types.Receipt, error)
}

type Client interface {
	Bind(parsed abi.ABI, address common.Address, from string) (Handle, error)
}

// Backend is the chain access a handle needs; *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type EthClient struct {
	backend         Backend
	signer          wallet.Signer
	receiptInterval time.Duration
}

func NewEthClient(backend Backend, signer wallet.Signer, receiptInterval time.Duration) *EthClient {
	return &EthClient{backend: backend, signer: signer, receiptInterval: receiptInterval}
}

func (c *EthClient) Bind(parsed abi.ABI, address common.Address, from string) (Handle, error) {
	if !common.IsHexAddress(from) {
		return nil, fmt.Errorf("%w: sender %q", ErrInvalidAddress, from)
	}
	return &handle{
		abi:             parsed,
		address:         address,
		from:            common.HexToAddress(from),
		bound:           bind.NewBoundContract(address, parsed, c.backend, nil, nil),
		backend:         c.backend,
		signer:          c.signer,
		receiptInterval: c.receiptInterval,
	}, nil
}

type handle struct {
	abi             abi.ABI
	address         common.Address
	from            common.Address
	bound           *bind.BoundContract
	backend         Backend
	signer          wallet.Signer
	receiptInterval time.Duration
}

func (h *handle) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("%w: account %q", ErrInvalidAddress, account)
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: h.from}
	if err := h.bound.Call(opts, &out, "balanceOf", common.HexToAddress(account)); err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("balanceOf: empty result")
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (h *handle) Transfer(ctx context.Context, receiver string, amount *big.Int) (*types.Receipt, error) {
	if !common.IsHexAddress(receiver) {
		return nil, fmt.Errorf("%w: receiver %q", ErrInvalidAddress, receiver)
	}
	data, err := h.abi.Pack("transfer", common.HexToAddress(receiver), amount)
	if err != nil {
		return nil, fmt.Errorf("pack transfer: %w", err)
	}

	hash, err := h.signer.SendTransaction(ctx, wallet.Transaction{From: h.from, To: h.address, Data: data})
	if err != nil {
		return nil, err
	}
	receipt, err := waitMined(ctx, h.backend, hash, h.receiptInterval)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrReverted, hash.Hex())
	}
	return receipt, nil
}
