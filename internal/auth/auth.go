// Package auth declares the login and register endpoints. Both are
// anonymous: no bearer token is attached, and neither interacts with the
// cache beyond returning its result. The caller feeds a successful login's
// access token into the token store.
package auth

import (
	"context"
	"net/http"

	"github.com/brkygngr/banking-client/internal/cache"
)

const family = "auth"

// LoginRequest is the body of POST /users/login. Identifier is the
// username or email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the bearer token issued for the session.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the identifier of the newly registered user.
type RegisterResponse struct {
	UserID string `json:"userId"`
}

var (
	loginEndpoint = cache.Endpoint{
		Family:    family,
		Name:      "login",
		Method:    http.MethodPost,
		Path:      func(any) string { return "/users/login" },
		Anonymous: true,
	}

	registerEndpoint = cache.Endpoint{
		Family:    family,
		Name:      "register",
		Method:    http.MethodPost,
		Path:      func(any) string { return "/users/register" },
		Anonymous: true,
	}
)

// Module exposes the auth operations.
type Module struct {
	store *cache.Store
}

// New binds the module to a cache engine.
func New(store *cache.Store) *Module {
	return &Module{store: store}
}

// Login exchanges credentials for an access token.
func (m *Module) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	raw, err := m.store.Mutate(ctx, loginEndpoint, req)
	if err != nil {
		return LoginResponse{}, err
	}
	return cache.DecodeValue[LoginResponse](raw)
}

// Register creates a new user.
func (m *Module) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	raw, err := m.store.Mutate(ctx, registerEndpoint, req)
	if err != nil {
		return RegisterResponse{}, err
	}
	return cache.DecodeValue[RegisterResponse](raw)
}
