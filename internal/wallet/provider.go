// Package wallet provides the account source and transaction signer the
// transfer workflow talks to. Two providers exist: RPCProvider delegates to a
// node-managed wallet over JSON-RPC, KeyProvider signs locally with a private
// key.
package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Transaction is an unsigned call the wallet is asked to sign and broadcast.
type Transaction struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

type Signer interface {
	SendTransaction(ctx context.Context, tx Transaction) (common.Hash, error)
}

type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	// OnAccountsChanged registers fn for account switches and returns a
	// function that removes it.
	OnAccountsChanged(fn func(accounts []string)) (unsubscribe func())
	Signer
}

type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func([]string)
}

// add registers fn and reports whether it is the first listener.
func (l *listeners) add(fn func([]string)) (id int, first bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func([]string))
	}
	id = l.next
	l.next++
	l.fns[id] = fn
	return id, len(l.fns) == 1
}

// remove drops the listener and reports whether none remain.
func (l *listeners) remove(id int) (empty bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fns, id)
	return len(l.fns) == 0
}

func (l *listeners) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

func (l *listeners) notify(accounts []string) {
	l.mu.Lock()
	fns := make([]func([]string), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(append([]string(nil), accounts...))
	}
}
