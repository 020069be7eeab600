// Package transaction defines transfer and history entities.
package transaction

import (
	"time"

	"github.com/brkygngr/banking-client/internal/domain/account"
)

// Status reports whether a recorded transaction settled or failed.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// TransferRequest is the body of POST /transactions/transfer. From and To
// are account identifiers.
type TransferRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// TransferResponse is the body of a completed transfer. A transfer the
// server could not settle still comes back with HTTP 200; Status FAILED
// and Message carry the reason.
type TransferResponse struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// HistoryRecord is one row of an account's transaction history.
type HistoryRecord struct {
	ID              string          `json:"id"`
	From            account.Account `json:"from"`
	To              account.Account `json:"to"`
	Amount          float64         `json:"amount"`
	TransactionDate time.Time       `json:"transactionDate"`
	Status          Status          `json:"status"`
}

// HistoryParams selects the account whose history is fetched.
type HistoryParams struct {
	AccountID string `json:"accountId"`
}
