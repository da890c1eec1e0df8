package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyBackend is the part of ethclient.Client a local signer needs.
type KeyBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyProvider exposes a single account backed by an in-process private key.
// Its account never changes, so listeners are kept but never called.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
	backend KeyBackend

	listeners listeners

	chainMu sync.Mutex
	chainID *big.Int
}

func NewKeyProvider(hexKey string, backend KeyBackend) (*KeyProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeyProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		backend: backend,
	}, nil
}

func (p *KeyProvider) Address() common.Address {
	return p.address
}

func (p *KeyProvider) RequestAccounts(context.Context) ([]string, error) {
	return []string{p.address.Hex()}, nil
}

func (p *KeyProvider) OnAccountsChanged(fn func(accounts []string)) func() {
	id, _ := p.listeners.add(fn)
	return func() { p.listeners.remove(id) }
}

func (p *KeyProvider) SendTransaction(ctx context.Context, tx Transaction) (common.Hash, error) {
	if tx.From != p.address {
		return common.Hash{}, fmt.Errorf("cannot sign for %s: key holds %s", tx.From.Hex(), p.address.Hex())
	}
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := p.backend.PendingNonceAt(ctx, p.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := p.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}
	to := tx.To
	gas, err := p.backend.EstimateGas(ctx, ethereum.CallMsg{From: p.address, To: &to, Value: value, Data: tx.Data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	chainID, err := p.chain(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	signed, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     tx.Data,
	}), types.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}
	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return signed.Hash(), nil
}

func (p *KeyProvider) chain(ctx context.Context) (*big.Int, error) {
	p.chainMu.Lock()
	defer p.chainMu.Unlock()
	if p.chainID != nil {
		return p.chainID, nil
	}
	id, err := p.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	p.chainID = id
	return id, nil
}
