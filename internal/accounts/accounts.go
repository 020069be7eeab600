// Package accounts declares the account endpoints of the banking API and
// their invalidation tags on top of the request cache.
package accounts

import (
	"context"
	"net/http"
	"net/url"

	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/domain/account"
	"github.com/brkygngr/banking-client/internal/domain/page"
)

// TagAccounts links the list query to every account mutation: creating,
// renaming or deleting an account invalidates the cached list.
const TagAccounts cache.Tag = "Accounts"

const family = "accounts"

var (
	createEndpoint = cache.Endpoint{
		Family:      family,
		Name:        "createAccount",
		Method:      http.MethodPost,
		Path:        func(any) string { return "/accounts" },
		Invalidates: []cache.Tag{TagAccounts},
	}

	listEndpoint = cache.Endpoint{
		Family:   family,
		Name:     "getAccounts",
		Method:   http.MethodGet,
		Provides: []cache.Tag{TagAccounts},
		Path: func(args any) string {
			params, _ := args.(account.ListParams)
			return "/accounts?number=" + url.QueryEscape(params.Number) +
				"&name=" + url.QueryEscape(params.Name)
		},
	}

	getEndpoint = cache.Endpoint{
		Family: family,
		Name:   "getAccount",
		Method: http.MethodGet,
		Path: func(args any) string {
			id, _ := args.(string)
			return "/accounts/" + url.PathEscape(id)
		},
	}

	updateEndpoint = cache.Endpoint{
		Family:      family,
		Name:        "updateAccount",
		Method:      http.MethodPut,
		Invalidates: []cache.Tag{TagAccounts},
		Path: func(args any) string {
			req, _ := args.(account.UpdateRequest)
			return "/accounts/" + url.PathEscape(req.ID)
		},
	}

	deleteEndpoint = cache.Endpoint{
		Family:      family,
		Name:        "deleteAccount",
		Method:      http.MethodDelete,
		Invalidates: []cache.Tag{TagAccounts},
		Path: func(args any) string {
			id, _ := args.(string)
			return "/accounts/" + url.PathEscape(id)
		},
	}
)

// Module exposes the account operations.
type Module struct {
	store *cache.Store
}

// New binds the module to a cache engine.
func New(store *cache.Store) *Module {
	return &Module{store: store}
}

// Create opens a new account and invalidates the account list.
func (m *Module) Create(ctx context.Context, req account.CreateRequest) (account.CreateResponse, error) {
	raw, err := m.store.Mutate(ctx, createEndpoint, req)
	if err != nil {
		return account.CreateResponse{}, err
	}
	return cache.DecodeValue[account.CreateResponse](raw)
}

// List subscribes to the filtered account page. Empty filters fetch the
// full unfiltered page.
func (m *Module) List(ctx context.Context, params account.ListParams, cb func(cache.Result[page.Page[account.Account]])) *cache.Subscription {
	return m.store.Subscribe(ctx, listEndpoint, params, wrap(cb))
}

// Get subscribes to a single account. The result carries no tags; it is
// refetched only on resubscription or an explicit Refetch.
func (m *Module) Get(ctx context.Context, id string, cb func(cache.Result[account.Account])) *cache.Subscription {
	return m.store.Subscribe(ctx, getEndpoint, id, wrap(cb))
}

// Update renames an account and invalidates the account list.
func (m *Module) Update(ctx context.Context, req account.UpdateRequest) error {
	_, err := m.store.Mutate(ctx, updateEndpoint, req)
	return err
}

// Delete removes an account and invalidates the account list.
func (m *Module) Delete(ctx context.Context, id string) error {
	_, err := m.store.Mutate(ctx, deleteEndpoint, id)
	return err
}

func wrap[T any](cb func(cache.Result[T])) func(cache.Snapshot) {
	if cb == nil {
		return nil
	}
	return func(snap cache.Snapshot) {
		cb(cache.Decode[T](snap))
	}
}
