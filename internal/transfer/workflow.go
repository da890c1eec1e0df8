// Package transfer implements the wallet transfer workflow: resolve the
// wallet account, bind the token contract, check the balance and send the
// transfer when it covers the requested amount.
package transfer

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"token-transfer-wallet/internal/contract"
	"token-transfer-wallet/internal/metrics"
	"token-transfer-wallet/internal/model"
	"token-transfer-wallet/internal/ui"
	"token-transfer-wallet/internal/wallet"
)

const (
	MissingInputAlert = "Please enter a receiver and amount"
	NotEnoughFunds    = "Not enough funds"
)

// Journal keeps a record of dispatched transfers.
type Journal interface {
	RecordTransfer(ctx context.Context, rec model.TransferRecord) error
}

// Notifier is told about wallet account switches.
type Notifier interface {
	AccountsChanged(accounts []string)
}

type Option func(*Workflow)

func WithMetrics(c *metrics.Collector) Option {
	return func(w *Workflow) { w.metrics = c }
}

func WithJournal(j Journal) Option {
	return func(w *Workflow) { w.journal = j }
}

func WithNotifier(n Notifier) Option {
	return func(w *Workflow) { w.notifier = n }
}

type Workflow struct {
	provider  wallet.Provider
	contracts contract.Client
	abiSource string
	token     common.Address
	display   *ui.State
	validate  *validator.Validate
	log       *zap.Logger
	metrics   *metrics.Collector
	journal   Journal
	notifier  Notifier

	mu          sync.Mutex
	unsubscribe func()
}

// New builds a workflow. provider may be nil when no wallet is configured.
func New(provider wallet.Provider, contracts contract.Client, display *ui.State, abiSource string, token common.Address, log *zap.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		provider:  provider,
		contracts: contracts,
		abiSource: abiSource,
		token:     token,
		display:   display,
		validate:  validator.New(),
		log:       log.Named("transfer"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start subscribes to account changes once for the life of the workflow.
func (w *Workflow) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.provider == nil || w.unsubscribe != nil {
		return
	}
	w.unsubscribe = w.provider.OnAccountsChanged(w.accountsChanged)
}

func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

func (w *Workflow) accountsChanged(accounts []string) {
	var account string
	if len(accounts) > 0 {
		account = accounts[0]
	}
	w.log.Info("accounts changed", zap.String("account", account))
	w.display.SetAccount(account)
	if w.notifier != nil {
		w.notifier.AccountsChanged(accounts)
	}
}

// Connect asks the wallet for account access. Without a wallet it only logs.
func (w *Workflow) Connect(ctx context.Context) error {
	if w.provider == nil {
		w.log.Info("no wallet")
		w.metrics.ObserveConnect("no_wallet")
		return nil
	}
	accounts, err := w.provider.RequestAccounts(ctx)
	if err != nil {
		w.metrics.ObserveConnect("rejected")
		return err
	}
	w.metrics.ObserveConnect("ok")
	w.log.Info("wallet connected", zap.Strings("accounts", accounts))
	return nil
}

// SendMoney transfers req.Amount smallest units of the token to req.Receiver
// when the active account holds enough. Missing input and insufficient funds
// are reported as outcomes on the display; every other failure is returned.
func (w *Workflow) SendMoney(ctx context.Context, req model.TransferRequest) (res *model.TransferResult, err error) {
	started := time.Now()
	log := w.log.With(zap.String("request_id", uuid.NewString()))
	defer func() {
		outcome := "error"
		if err == nil {
			outcome = res.Outcome
		}
		w.metrics.ObserveWorkflow(outcome, started)
	}()

	w.display.ResetError()
	if err := w.validate.Struct(req); err != nil {
		log.Info("missing transfer input", zap.Error(err))
		w.display.Alert(MissingInputAlert)
		return w.result(model.OutcomeMissingInput, ""), nil
	}
	if w.provider == nil {
		return nil, ErrProviderUnavailable
	}

	parsed, err := contract.LoadABI(ctx, w.abiSource)
	if err != nil {
		return nil, err
	}

	accounts, err := w.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	log.Debug("accounts resolved", zap.Strings("accounts", accounts))
	if len(accounts) == 0 {
		// one best-effort reconnect, the user has to retry the transfer
		if err := w.Connect(ctx); err != nil {
			log.Warn("fallback connect failed", zap.Error(err))
		}
		return nil, ErrNoAccount
	}
	account := accounts[0]

	handle, err := w.contracts.Bind(parsed, w.token, account)
	if err != nil {
		return nil, err
	}
	balance, err := handle.BalanceOf(ctx, account)
	if err != nil {
		return nil, err
	}
	w.display.SetBalance(balance.String())
	w.display.SetAccount(account)
	log.Info("balance read", zap.String("account", account), zap.Stringer("balance", balance))

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		log.Info("not enough funds", zap.Stringer("balance", balance), zap.Stringer("amount", amount))
		w.display.ShowError(NotEnoughFunds)
		return w.result(model.OutcomeInsufficientFunds, ""), nil
	}

	receipt, err := handle.Transfer(ctx, req.Receiver, amount)
	if receipt != nil {
		w.record(ctx, log, account, req.Receiver, amount, receipt)
	}
	if err != nil {
		return nil, err
	}
	log.Info("transfer sent",
		zap.String("tx_hash", receipt.TxHash.Hex()),
		zap.String("receiver", req.Receiver),
		zap.Stringer("amount", amount))
	return w.result(model.OutcomeSent, receipt.TxHash.Hex()), nil
}

func (w *Workflow) result(outcome, txHash string) *model.TransferResult {
	return &model.TransferResult{Outcome: outcome, TxHash: txHash, Display: w.display.Snapshot()}
}

// record journals a mined transfer. Journal failures never fail the transfer.
func (w *Workflow) record(ctx context.Context, log *zap.Logger, from, to string, amount *big.Int, receipt *types.Receipt) {
	if w.journal == nil {
		return
	}
	rec := model.TransferRecord{
		TxHash:      receipt.TxHash.Hex(),
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount.String(),
		Status:      "success",
		CreatedAt:   time.Now().UTC(),
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		rec.Status = "reverted"
	}
	if receipt.BlockNumber != nil {
		rec.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if err := w.journal.RecordTransfer(ctx, rec); err != nil {
		log.Error("journal transfer", zap.String("tx_hash", rec.TxHash), zap.Error(err))
	}
}

// parseAmount reads a whole number of the token's smallest unit. No decimal
// scaling is applied. Exponent notation is refused: the amount sent must be
// the digits the user typed, and "1e50000000" would expand to a huge integer.
func parseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "eE") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.BigInt(), nil
}
