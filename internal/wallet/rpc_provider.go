package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const methodNotFound = -32601

// RPCProvider uses the accounts a JSON-RPC endpoint manages. The endpoint
// signs transactions itself, the way a browser wallet does.
type RPCProvider struct {
	client   *rpc.Client
	interval time.Duration
	log      *zap.Logger

	listeners listeners

	mu     sync.Mutex
	stop   context.CancelFunc
	polled chan struct{}
}

func NewRPCProvider(client *rpc.Client, pollInterval time.Duration, log *zap.Logger) *RPCProvider {
	return &RPCProvider{
		client:   client,
		interval: pollInterval,
		log:      log.Named("rpc_wallet"),
	}
}

// RequestAccounts asks the endpoint for account access. Nodes that do not know
// eth_requestAccounts are asked for eth_accounts instead.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts")
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == methodNotFound {
		accounts, err = p.accounts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("request accounts: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// OnAccountsChanged starts polling eth_accounts with the first listener and
// stops when the last one unsubscribes. The returned func may be called from
// inside a listener.
func (p *RPCProvider) OnAccountsChanged(fn func(accounts []string)) func() {
	p.mu.Lock()
	id, first := p.listeners.add(fn)
	if first {
		p.startPolling()
	}
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.listeners.remove(id) {
				p.cancelPolling()
			}
		})
	}
}

// startPolling and cancelPolling must be called with p.mu held.
func (p *RPCProvider) startPolling() {
	if p.stop != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.stop, p.polled = cancel, done
	go p.poll(ctx, done)
}

// cancelPolling stops the running poller without waiting for it and returns
// the channel closed when it exits.
func (p *RPCProvider) cancelPolling() chan struct{} {
	done := p.polled
	if p.stop != nil {
		p.stop()
	}
	p.stop, p.polled = nil, nil
	return done
}

func (p *RPCProvider) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last []string
	baseline := false
	for {
		accounts, err := p.accounts(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			p.log.Warn("eth_accounts poll failed", zap.Error(err))
		default:
			changed := baseline && !slices.Equal(last, accounts)
			last, baseline = accounts, true
			if changed {
				p.log.Debug("accounts changed", zap.Strings("accounts", accounts))
				p.listeners.notify(accounts)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

// SendTransaction hands the call to the endpoint for signing and broadcast.
func (p *RPCProvider) SendTransaction(ctx context.Context, tx Transaction) (common.Hash, error) {
	to := tx.To
	args := sendTxArgs{From: tx.From, To: &to, Data: tx.Data}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(new(big.Int).Set(tx.Value))
	}

	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return hash, nil
}

// Close stops account polling. The underlying rpc client is left open.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	done := p.cancelPolling()
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}
