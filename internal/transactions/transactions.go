// Package transactions declares the transfer and history endpoints.
//
// Transfer deliberately declares no invalidation tags: a transfer changes
// account balances as a server-side effect, so callers force a refetch of
// account data themselves after a successful transfer.
package transactions

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/domain/transaction"
)

const family = "transactions"

// Client-side validation errors. These are rejected before any dispatch:
// no cache entry is touched and no notification is produced.
var (
	ErrSameAccount       = errors.New("transactions: source and destination account are the same")
	ErrNonPositiveAmount = errors.New("transactions: amount must be positive")
)

var (
	transferEndpoint = cache.Endpoint{
		Family: family,
		Name:   "transferMoney",
		Method: http.MethodPost,
		Path:   func(any) string { return "/transactions/transfer" },
	}

	historyEndpoint = cache.Endpoint{
		Family: family,
		Name:   "history",
		Method: http.MethodGet,
		Path: func(args any) string {
			params, _ := args.(transaction.HistoryParams)
			return "/transactions/account/" + url.PathEscape(params.AccountID)
		},
	}
)

// Module exposes the transaction operations.
type Module struct {
	store *cache.Store
}

// New binds the module to a cache engine.
func New(store *cache.Store) *Module {
	return &Module{store: store}
}

// Transfer moves money between two accounts. Same-account transfers and
// non-positive amounts are rejected client-side. A transfer the server
// declines for insufficient balance is not an error: it returns a
// response with status FAILED.
func (m *Module) Transfer(ctx context.Context, req transaction.TransferRequest) (transaction.TransferResponse, error) {
	if req.From == req.To {
		return transaction.TransferResponse{}, ErrSameAccount
	}
	if req.Amount <= 0 {
		return transaction.TransferResponse{}, ErrNonPositiveAmount
	}
	raw, err := m.store.Mutate(ctx, transferEndpoint, req)
	if err != nil {
		return transaction.TransferResponse{}, err
	}
	return cache.DecodeValue[transaction.TransferResponse](raw)
}

// History subscribes to an account's transaction history.
func (m *Module) History(ctx context.Context, accountID string, cb func(cache.Result[[]transaction.HistoryRecord])) *cache.Subscription {
	wrapped := func(snap cache.Snapshot) {
		if cb != nil {
			cb(cache.Decode[[]transaction.HistoryRecord](snap))
		}
	}
	if cb == nil {
		wrapped = nil
	}
	return m.store.Subscribe(ctx, historyEndpoint, transaction.HistoryParams{AccountID: accountID}, wrapped)
}
