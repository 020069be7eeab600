package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brkygngr/banking-client/internal/auth"
	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/config"
	"github.com/brkygngr/banking-client/internal/mockapi"
	"github.com/brkygngr/banking-client/internal/notify"
	"github.com/brkygngr/banking-client/internal/runtime"
	"github.com/brkygngr/banking-client/internal/token"
)

func newApp(t *testing.T) (*runtime.App, *mockapi.Server) {
	t.Helper()
	server := mockapi.New([]byte("test-secret"), nil)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.API.BaseURL = ts.URL
	app, err := runtime.New(cfg, runtime.WithTokenStorage(token.NewMemoryStorage()))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app, server
}

func TestRegisterThenLogin(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	registered, err := app.Auth.Register(ctx, auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.UserID == "" {
		t.Fatal("register returned no user id")
	}

	session, err := app.Auth.Login(ctx, auth.LoginRequest{Identifier: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("login returned no access token")
	}
}

func TestRegister_DuplicateUserNotifiesFailure(t *testing.T) {
	app, server := newApp(t)
	server.Seed("alice", "alice@example.com", "secret", nil)

	_, err := app.Auth.Register(context.Background(), auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
	})
	if err == nil {
		t.Fatal("expected duplicate register to fail")
	}
	prob, ok := err.(*cache.Problem)
	if !ok {
		t.Fatalf("expected *cache.Problem, got %T", err)
	}
	if prob.Status != http.StatusConflict {
		t.Fatalf("status = %d", prob.Status)
	}

	messages := app.Notifications.Messages()
	if len(messages) != 1 {
		t.Fatalf("notifications = %+v", messages)
	}
	if messages[0].Severity != notify.SeverityFailure {
		t.Fatalf("severity = %q", messages[0].Severity)
	}
	if messages[0].Body != "APP0002 user already exists" {
		t.Fatalf("body = %q", messages[0].Body)
	}
}

func TestLogin_BadCredentialsNotifyFailure(t *testing.T) {
	app, server := newApp(t)
	server.Seed("alice", "alice@example.com", "secret", nil)

	_, err := app.Auth.Login(context.Background(), auth.LoginRequest{Identifier: "alice", Password: "wrong"})
	if err == nil {
		t.Fatal("expected login to fail")
	}
	prob, ok := err.(*cache.Problem)
	if !ok {
		t.Fatalf("expected *cache.Problem, got %T", err)
	}
	if prob.Status != http.StatusNotFound {
		t.Fatalf("status = %d", prob.Status)
	}

	messages := app.Notifications.Messages()
	if len(messages) != 1 {
		t.Fatalf("notifications = %+v", messages)
	}
	if messages[0].Body != "APP0003 user or password invalid" {
		t.Fatalf("body = %q", messages[0].Body)
	}
}
