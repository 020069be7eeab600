// Package token holds the current authentication token and persists it
// across restarts through a durable key-value surface.
package token

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brkygngr/banking-client/pkg/logger"
)

// storageKey is the fixed well-known key the token is persisted under.
const storageKey = "token"

// ErrNotJWT reports that the stored token is opaque and carries no claims.
var ErrNotJWT = errors.New("token: not a JWT")

// Store keeps the bearer token in memory and writes every mutation through
// to storage. Persistence failures are logged and otherwise ignored.
type Store struct {
	mu      sync.Mutex
	token   string
	present bool
	storage Storage
	log     *logger.Logger
}

// NewStore restores any previously persisted token. The persisted value is
// JSON-encoded; values that fail to decode are treated as absent.
func NewStore(storage Storage, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("token-store")
	}
	s := &Store{storage: storage, log: log}

	raw, ok, err := storage.Load(storageKey)
	if err != nil {
		log.WithError(err).Warn("restore token failed")
		return s
	}
	if !ok {
		return s
	}
	var token string
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		log.WithError(err).Warn("persisted token is malformed")
		return s
	}
	s.token = token
	s.present = true
	return s
}

// Get returns the current token and whether one is present.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.present
}

// Set replaces the current token and persists it.
func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.present = true

	encoded, err := json.Marshal(token)
	if err == nil {
		err = s.storage.Save(storageKey, string(encoded))
	}
	if err != nil {
		s.log.WithError(err).Warn("persist token failed")
	}
}

// Clear drops the current token and erases the persisted copy.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.present = false

	if err := s.storage.Delete(storageKey); err != nil {
		s.log.WithError(err).Warn("erase persisted token failed")
	}
}

// Token implements the cache's token source: it reports the current token
// for authorization header attachment.
func (s *Store) Token() (string, bool) {
	return s.Get()
}

// Claims parses the current token as an unverified JWT and returns its
// registered claims. Opaque tokens and an absent token return ErrNotJWT.
func (s *Store) Claims() (*jwt.RegisteredClaims, error) {
	current, ok := s.Get()
	if !ok {
		return nil, ErrNotJWT
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(current, claims); err != nil {
		return nil, ErrNotJWT
	}
	return claims, nil
}

// Expired reports whether the current token is a JWT whose expiry has
// passed. Opaque or absent tokens are never considered expired here; the
// server remains the authority for those.
func (s *Store) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
