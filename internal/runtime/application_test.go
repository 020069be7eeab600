package runtime_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/config"
	"github.com/brkygngr/banking-client/internal/domain/account"
	"github.com/brkygngr/banking-client/internal/domain/page"
	"github.com/brkygngr/banking-client/internal/domain/transaction"
	"github.com/brkygngr/banking-client/internal/mockapi"
	"github.com/brkygngr/banking-client/internal/notify"
	"github.com/brkygngr/banking-client/internal/runtime"
	"github.com/brkygngr/banking-client/internal/token"
)

const settleTimeout = 5 * time.Second

func newEnv(t *testing.T) (config.Config, *mockapi.Server) {
	t.Helper()
	server := mockapi.New([]byte("test-secret"), nil)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.API.BaseURL = ts.URL
	return cfg, server
}

func awaitList(t *testing.T, app *runtime.App) chan cache.Result[page.Page[account.Account]] {
	t.Helper()
	settled := make(chan cache.Result[page.Page[account.Account]], 16)
	app.Accounts.List(context.Background(), account.ListParams{}, func(result cache.Result[page.Page[account.Account]]) {
		if !result.IsLoading {
			settled <- result
		}
	})
	return settled
}

func nextResult(t *testing.T, ch chan cache.Result[page.Page[account.Account]]) cache.Result[page.Page[account.Account]] {
	t.Helper()
	select {
	case result := <-ch:
		return result
	case <-time.After(settleTimeout):
		t.Fatal("no settled result before timeout")
		return cache.Result[page.Page[account.Account]]{}
	}
}

func TestSignIn_PersistsTokenAcrossRestart(t *testing.T) {
	cfg, server := newEnv(t)
	server.Seed("alice", "alice@example.com", "secret", map[string]float64{"Savings": 100})
	storage := token.NewMemoryStorage()

	first, err := runtime.New(cfg, runtime.WithTokenStorage(storage))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if err := first.SignIn(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if _, ok := first.Tokens.Get(); !ok {
		t.Fatal("token absent after sign in")
	}

	// A new app over the same storage restores the session without login.
	second, err := runtime.New(cfg, runtime.WithTokenStorage(storage))
	if err != nil {
		t.Fatalf("rebuild app: %v", err)
	}
	if _, ok := second.Tokens.Get(); !ok {
		t.Fatal("token not restored on restart")
	}

	result := nextResult(t, awaitList(t, second))
	if result.IsError {
		t.Fatalf("restored session cannot list accounts: %v", result.Err)
	}
	if result.Data.TotalElements != 1 {
		t.Fatalf("page = %+v", result.Data)
	}
}

func TestSignOut_ClearsTokenAndCache(t *testing.T) {
	cfg, server := newEnv(t)
	server.Seed("alice", "alice@example.com", "secret", map[string]float64{"Savings": 100})

	app, err := runtime.New(cfg, runtime.WithTokenStorage(token.NewMemoryStorage()))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if err := app.SignIn(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	nextResult(t, awaitList(t, app))

	app.SignOut()
	if _, ok := app.Tokens.Get(); ok {
		t.Fatal("token survived sign out")
	}
	if app.Cache.Len() != 0 {
		t.Fatalf("cache entries = %d, want 0", app.Cache.Len())
	}
}

func TestUnauthorizedResponse_NotifiesThenClearsToken(t *testing.T) {
	cfg, server := newEnv(t)
	server.Seed("alice", "alice@example.com", "secret", nil)

	app, err := runtime.New(cfg, runtime.WithTokenStorage(token.NewMemoryStorage()))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	app.Tokens.Set("not-a-valid-token")

	result := nextResult(t, awaitList(t, app))
	if !result.IsError || result.Err.Status != 401 {
		t.Fatalf("result = %+v", result)
	}

	if _, ok := app.Tokens.Get(); ok {
		t.Fatal("token survived unauthorized response")
	}
	messages := app.Notifications.Messages()
	if len(messages) != 1 || messages[0].Severity != notify.SeverityFailure {
		t.Fatalf("notifications = %+v", messages)
	}
}

func TestRefetchAccounts_ReexecutesSubscribedQueries(t *testing.T) {
	cfg, server := newEnv(t)
	ids := server.Seed("alice", "alice@example.com", "secret", map[string]float64{
		"Savings":  100,
		"Checking": 0,
	})

	app, err := runtime.New(cfg, runtime.WithTokenStorage(token.NewMemoryStorage()))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if err := app.SignIn(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	settled := awaitList(t, app)
	before := nextResult(t, settled)
	if before.IsError {
		t.Fatalf("list failed: %v", before.Err)
	}

	// Transfers declare no invalidation tags; balances only move after an
	// explicit refetch.
	_, err = app.Transactions.Transfer(context.Background(), transaction.TransferRequest{
		From:   ids["Savings"],
		To:     ids["Checking"],
		Amount: 40,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	app.RefetchAccounts()

	after := nextResult(t, settled)
	balances := make(map[string]float64)
	for _, acct := range after.Data.Content {
		balances[acct.Name] = acct.Balance
	}
	if balances["Savings"] != 60 || balances["Checking"] != 40 {
		t.Fatalf("balances after refetch = %v", balances)
	}
}

func TestReset_DropsCacheAndNotificationsButKeepsToken(t *testing.T) {
	cfg, server := newEnv(t)
	server.Seed("alice", "alice@example.com", "secret", map[string]float64{"Savings": 100})

	app, err := runtime.New(cfg, runtime.WithTokenStorage(token.NewMemoryStorage()))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if err := app.SignIn(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	nextResult(t, awaitList(t, app))

	app.Reset()
	if app.Cache.Len() != 0 {
		t.Fatalf("cache entries = %d", app.Cache.Len())
	}
	if app.Notifications.Len() != 0 {
		t.Fatalf("notifications = %d", app.Notifications.Len())
	}
	if _, ok := app.Tokens.Get(); !ok {
		t.Fatal("token lost on reset")
	}
}
