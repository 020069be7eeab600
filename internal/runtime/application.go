// Package runtime wires the sync core into one application container with
// explicit construction and reset, so tests build isolated instances
// instead of sharing ambient global state.
package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/brkygngr/banking-client/internal/accounts"
	"github.com/brkygngr/banking-client/internal/auth"
	"github.com/brkygngr/banking-client/internal/cache"
	"github.com/brkygngr/banking-client/internal/config"
	"github.com/brkygngr/banking-client/internal/notify"
	"github.com/brkygngr/banking-client/internal/pipeline"
	"github.com/brkygngr/banking-client/internal/token"
	"github.com/brkygngr/banking-client/internal/transactions"
	"github.com/brkygngr/banking-client/pkg/logger"
)

// App owns every store of the sync core and the resource modules built on
// top of them.
type App struct {
	Config config.Config
	Log    *logger.Logger

	Tokens        *token.Store
	Notifications *notify.Store
	Cache         *cache.Store

	Accounts     *accounts.Module
	Auth         *auth.Module
	Transactions *transactions.Module
}

type options struct {
	storage    token.Storage
	httpClient *http.Client
	registry   prometheus.Registerer
}

// Option customizes application construction.
type Option func(*options)

// WithTokenStorage replaces the file-backed token storage. Tests use the
// in-memory implementation.
func WithTokenStorage(storage token.Storage) Option {
	return func(o *options) { o.storage = storage }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithMetricsRegistry enables cache metrics on the given registry.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// New builds the application: restores any persisted token, connects the
// request cache to the API base address, and attaches the outcome pipeline.
func New(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.New(logger.LoggingConfig{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		Component: "bankclient",
	})

	storage := o.storage
	if storage == nil {
		fileStorage, err := token.NewFileStorage(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("open token storage: %w", err)
		}
		storage = fileStorage
	}
	tokens := token.NewStore(storage, log)
	notifications := notify.NewStore()

	httpClient := o.httpClient
	if httpClient == nil && cfg.API.TimeoutSeconds > 0 {
		httpClient = &http.Client{Timeout: cfg.API.Timeout()}
	}
	client, err := cache.NewClient(cache.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		Tokens:     tokens,
		HTTPClient: httpClient,
		RateLimit:  cfg.API.RateLimit,
		RateBurst:  cfg.API.RateBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("build API client: %w", err)
	}

	var metrics *cache.Metrics
	if o.registry != nil {
		metrics = cache.NewMetrics(o.registry)
	}
	store := cache.NewStore(cache.Config{
		Client:    client,
		Retention: cfg.Cache.Retention(),
		Metrics:   metrics,
		Logger:    log,
	})
	store.AddListener(pipeline.New(pipeline.Config{
		Notifications: notifications,
		Tokens:        tokens,
		Duration:      cfg.Notifications.Duration(),
		Logger:        log,
	}))

	return &App{
		Config:        cfg,
		Log:           log,
		Tokens:        tokens,
		Notifications: notifications,
		Cache:         store,
		Accounts:      accounts.New(store),
		Auth:          auth.New(store),
		Transactions:  transactions.New(store),
	}, nil
}

// SignIn logs in and feeds the issued access token into the token store.
func (a *App) SignIn(ctx context.Context, identifier, password string) error {
	res, err := a.Auth.Login(ctx, auth.LoginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return err
	}
	a.Tokens.Set(res.AccessToken)
	return nil
}

// SignOut clears the token and drops all cached data.
func (a *App) SignOut() {
	a.Tokens.Clear()
	a.Cache.Reset()
}

// RefetchAccounts forces every subscribed account query to re-execute.
// Callers invoke it after a successful transfer, since transfers change
// balances server side without declaring invalidation tags.
func (a *App) RefetchAccounts() {
	a.Cache.Invalidate(accounts.TagAccounts)
}

// Reset drops cached entries and live notifications, leaving the token
// untouched. Tests use it between scenarios.
func (a *App) Reset() {
	a.Cache.Reset()
	a.Notifications.Reset()
}
