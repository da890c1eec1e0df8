package graph

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"token-transfer-wallet/internal/model"
	"token-transfer-wallet/internal/ui"
)

var ErrJournalDisabled = errors.New("transfer journal is disabled")

// Workflow is the wallet transfer workflow the page buttons drive.
type Workflow interface {
	Connect(ctx context.Context) error
	SendMoney(ctx context.Context, req model.TransferRequest) (*model.TransferResult, error)
}

type TransferLister func(ctx context.Context, account string, limit int) ([]model.TransferRecord, error)

type Resolver struct {
	Workflow  Workflow
	Display   *ui.State
	Transfers TransferLister
	Log       *zap.Logger
}

type SendMoneyArgs struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

func (r *Resolver) GetDisplay() model.Display {
	return r.Display.Snapshot()
}

// Connect logs a failed connect and hands the error back to the page.
func (r *Resolver) Connect(ctx context.Context) (bool, error) {
	if err := r.Workflow.Connect(ctx); err != nil {
		r.Log.Error("connect failed", zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *Resolver) SendMoney(ctx context.Context, args SendMoneyArgs) (*model.TransferResult, error) {
	result, err := r.Workflow.SendMoney(ctx, model.TransferRequest{
		Receiver: args.Receiver,
		Amount:   args.Amount,
	})
	if err != nil {
		r.Log.Error("send money failed", zap.String("receiver", args.Receiver), zap.String("amount", args.Amount), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (r *Resolver) ListTransfers(ctx context.Context, account string, limit int) ([]model.TransferRecord, error) {
	if r.Transfers == nil {
		return nil, ErrJournalDisabled
	}
	return r.Transfers(ctx, account, limit)
}
