// Package mockapi is an in-memory implementation of the banking API used
// for local development and integration tests. It serves every endpoint
// the client consumes, issues and verifies bearer tokens, and produces the
// same {code, errors, timestamp} error bodies as the real service.
package mockapi

import (
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/brkygngr/banking-client/internal/domain/transaction"
	"github.com/brkygngr/banking-client/pkg/logger"
)

const (
	accountNumberLength = 16
	tokenTTL            = time.Hour
)

type user struct {
	ID       string
	Username string
	Email    string
	Password string
}

type bankAccount struct {
	ID      string
	Number  string
	Name    string
	Balance float64
	Owner   string
}

// Server holds all mock state behind one lock.
type Server struct {
	mu       sync.RWMutex
	users    map[string]user        // by username
	accounts map[string]bankAccount // by id
	history  []transaction.HistoryRecord

	secret []byte
	router *mux.Router
	log    *logger.Logger
	rand   *rand.Rand
	now    func() time.Time
}

// New creates a mock server signing tokens with the given secret.
func New(secret []byte, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault("mockapi")
	}
	s := &Server{
		users:    make(map[string]user),
		accounts: make(map[string]bankAccount),
		secret:   secret,
		log:      log,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/users/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	authed.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{id}", s.handleUpdateAccount).Methods(http.MethodPut)
	authed.HandleFunc("/accounts/{id}", s.handleDeleteAccount).Methods(http.MethodDelete)
	authed.HandleFunc("/transactions/transfer", s.handleTransfer).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/account/{accountId}", s.handleHistory).Methods(http.MethodGet)

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requireAuth validates the bearer token and stashes the username in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.writeError(w, http.StatusUnauthorized, codeAuthentication, "full authentication is required")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, http.StatusUnauthorized, codeAuthentication, "invalid authorization header")
			return
		}

		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !parsed.Valid {
			s.writeError(w, http.StatusUnauthorized, codeAuthentication, "token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUsername(r.Context(), claims.Subject)))
	})
}

func (s *Server) issueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) newAccountNumber() string {
	var b strings.Builder
	b.Grow(accountNumberLength)
	for i := 0; i < accountNumberLength; i++ {
		b.WriteByte(byte('0' + s.rand.Intn(10)))
	}
	return b.String()
}
