package model

import "time"

// Display is what the page shows: the active account, its token balance and
// the error banner.
type Display struct {
	Account      string `json:"account"`
	Balance      string `json:"balance"`
	Error        string `json:"error"`
	ErrorVisible bool   `json:"errorVisible"`
	Alert        string `json:"alert,omitempty"`
}

type TransferRequest struct {
	Receiver string `json:"receiver" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
}

// Outcomes of a SendMoney call that completed without error.
const (
	OutcomeSent              = "sent"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeMissingInput      = "missing_input"
)

type TransferResult struct {
	Outcome string  `json:"outcome"`
	TxHash  string  `json:"txHash,omitempty"`
	Display Display `json:"display"`
}

// TransferRecord is one dispatched transfer as kept in the journal.
type TransferRecord struct {
	TxHash      string    `json:"txHash"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	BlockNumber uint64    `json:"blockNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}
