package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Error codes mirrored from the banking service.
const (
	codeInvalidRequest = "APP0001"
	codeUserExists     = "APP0002"
	codeNotFound       = "APP0003"
	codeNotEnoughMoney = "APP0005"
	codeAuthentication = "AUTH0001"
)

// exceptionResponse is the error body shape consumed by the client's
// outcome pipeline.
type exceptionResponse struct {
	Code      string   `json:"code"`
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, errs ...string) {
	s.writeJSON(w, status, exceptionResponse{
		Code:      code,
		Errors:    errs,
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.log.WithError(err).Warn("encode response failed")
		}
	}
}

type contextKey struct{}

func withUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKey{}, username)
}

func usernameFrom(ctx context.Context) string {
	username, _ := ctx.Value(contextKey{}).(string)
	return username
}
