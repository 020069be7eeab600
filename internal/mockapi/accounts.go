package mockapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/brkygngr/banking-client/internal/domain/account"
	"github.com/brkygngr/banking-client/internal/domain/page"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req account.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "name is required")
		return
	}

	created := bankAccount{
		ID:     uuid.NewString(),
		Number: s.newAccountNumber(),
		Name:   req.Name,
		Owner:  usernameFrom(r.Context()),
	}

	s.mu.Lock()
	s.accounts[created.ID] = created
	s.mu.Unlock()

	s.writeJSON(w, http.StatusCreated, map[string]string{"accountId": created.ID})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner := usernameFrom(r.Context())
	number := r.URL.Query().Get("number")
	name := r.URL.Query().Get("name")

	s.mu.RLock()
	var matched []account.Account
	for _, acct := range s.accounts {
		if acct.Owner != owner {
			continue
		}
		if number != "" && !strings.Contains(acct.Number, number) {
			continue
		}
		if name != "" && !strings.Contains(acct.Name, name) {
			continue
		}
		matched = append(matched, toAccount(acct))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Number < matched[j].Number })

	result := page.Empty[account.Account]()
	result.Content = append(result.Content, matched...)
	result.TotalElements = len(matched)
	result.Size = len(matched)
	if len(matched) > 0 {
		result.TotalPages = 1
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	owner := usernameFrom(r.Context())

	s.mu.RLock()
	acct, ok := s.accounts[id]
	s.mu.RUnlock()

	if !ok || acct.Owner != owner {
		s.writeError(w, http.StatusNotFound, codeNotFound, "account not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toAccount(acct))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	owner := usernameFrom(r.Context())

	var req account.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "name is required")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[id]
	if ok && acct.Owner == owner {
		acct.Name = req.Name
		s.accounts[id] = acct
	}
	s.mu.Unlock()

	if !ok || acct.Owner != owner {
		s.writeError(w, http.StatusNotFound, codeNotFound, "account not found")
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	owner := usernameFrom(r.Context())

	s.mu.Lock()
	acct, ok := s.accounts[id]
	if ok && acct.Owner == owner {
		delete(s.accounts, id)
	}
	s.mu.Unlock()

	if !ok || acct.Owner != owner {
		s.writeError(w, http.StatusNotFound, codeNotFound, "account not found")
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func toAccount(acct bankAccount) account.Account {
	return account.Account{
		ID:      acct.ID,
		Number:  acct.Number,
		Name:    acct.Name,
		Balance: acct.Balance,
	}
}

// Seed inserts a user with accounts directly into the store. Tests use it
// to avoid walking the register/login flow for every scenario.
func (s *Server) Seed(username, email, password string, balances map[string]float64) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[username] = user{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Password: password,
	}

	ids := make(map[string]string, len(balances))
	for name, balance := range balances {
		acct := bankAccount{
			ID:      uuid.NewString(),
			Number:  s.newAccountNumber(),
			Name:    name,
			Balance: balance,
			Owner:   username,
		}
		s.accounts[acct.ID] = acct
		ids[name] = acct.ID
	}
	return ids
}
