package mockapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/brkygngr/banking-client/internal/domain/transaction"
)

// handleTransfer mirrors the banking service: an unknown account is a
// structured 404, while insufficient balance records a FAILED transaction
// and still returns 200 with the failure status in the body.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	owner := usernameFrom(r.Context())

	var req transaction.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}
	if req.Amount <= 0 {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "amount must be positive")
		return
	}
	if req.From == req.To {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "source and destination accounts are the same")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, fromOK := s.accounts[req.From]
	to, toOK := s.accounts[req.To]
	if !fromOK || !toOK || from.Owner != owner || to.Owner != owner {
		s.writeError(w, http.StatusNotFound, codeNotFound, "account not found")
		return
	}

	record := transaction.HistoryRecord{
		ID:              uuid.NewString(),
		From:            toAccount(from),
		To:              toAccount(to),
		Amount:          req.Amount,
		TransactionDate: s.now(),
	}

	if from.Balance < req.Amount {
		record.Status = transaction.StatusFailed
		s.history = append(s.history, record)
		s.writeJSON(w, http.StatusOK, transaction.TransferResponse{
			Status:  transaction.StatusFailed,
			Message: "not enough money",
		})
		return
	}

	from.Balance -= req.Amount
	to.Balance += req.Amount
	s.accounts[from.ID] = from
	s.accounts[to.ID] = to

	record.Status = transaction.StatusSuccess
	record.From = toAccount(from)
	record.To = toAccount(to)
	s.history = append(s.history, record)

	s.writeJSON(w, http.StatusOK, transaction.TransferResponse{Status: transaction.StatusSuccess})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	owner := usernameFrom(r.Context())

	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[accountID]
	if !ok || acct.Owner != owner {
		s.writeError(w, http.StatusNotFound, codeNotFound, "account not found")
		return
	}

	records := make([]transaction.HistoryRecord, 0)
	for _, record := range s.history {
		if record.From.ID == accountID || record.To.ID == accountID {
			records = append(records, record)
		}
	}
	s.writeJSON(w, http.StatusOK, records)
}
