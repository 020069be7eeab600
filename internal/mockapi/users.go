package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}

	var errs []string
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, "username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	if len(errs) > 0 {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, errs...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == req.Username || existing.Email == req.Email {
			s.writeError(w, http.StatusConflict, codeUserExists, "user already exists")
			return
		}
	}

	created := user{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	s.users[created.Username] = created

	s.writeJSON(w, http.StatusCreated, map[string]string{"userId": created.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}

	s.mu.RLock()
	var found *user
	for _, candidate := range s.users {
		if candidate.Username == req.Identifier || candidate.Email == req.Identifier {
			found = &candidate
			break
		}
	}
	s.mu.RUnlock()

	if found == nil || found.Password != req.Password {
		s.writeError(w, http.StatusNotFound, codeNotFound, "user or password invalid")
		return
	}

	token, err := s.issueToken(found.Username)
	if err != nil {
		s.log.WithError(err).Error("sign token failed")
		s.writeError(w, http.StatusInternalServerError, codeInvalidRequest, "token signing failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
}
