// ABOUTME: JSON request handlers for the auth endpoints
// ABOUTME: Maps domain errors onto HTTP statuses; no domain failure escapes unmapped

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/orbiplay/orbi-auth/internal/account"
	"github.com/orbiplay/orbi-auth/internal/auth"
	"github.com/orbiplay/orbi-auth/internal/reset"
)

// Request bodies. Unknown fields are ignored; malformed JSON decodes to the
// zero struct and fails field validation downstream.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	decodeLenient(r.Body, &req)

	if err := s.accounts.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	decodeLenient(r.Body, &req)

	name, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": name})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	decodeLenient(r.Body, &req)

	token, err := s.accounts.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "token": token, "role": "admin"})
}

func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	decodeLenient(r.Body, &req)

	if err := s.accounts.RequestReset(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Always {ok:true}: the response is identical whether or not the
	// email belongs to an account.
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	decodeLenient(r.Body, &req)

	if err := s.accounts.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// writeError translates a domain error into an HTTP status and JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		// Do not leak internals to the client
		if !isOperatorError(err) {
			message = "internal error"
		}
	}

	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, account.ErrValidation):
		return http.StatusBadRequest, "invalid data"
	case errors.Is(err, account.ErrDuplicateEmail):
		return http.StatusConflict, "exists"
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, reset.ErrInvalidCode):
		return http.StatusBadRequest, "invalid code"
	case errors.Is(err, reset.ErrExpiredCode):
		return http.StatusBadRequest, "code expired"
	case errors.Is(err, reset.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many attempts"
	case errors.Is(err, auth.ErrAdminDenied):
		return http.StatusUnauthorized, "access denied"
	case errors.Is(err, auth.ErrAdminNotConfigured):
		return http.StatusInternalServerError, "admin not configured"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// isOperatorError reports whether a 500-class error carries a message meant
// for operators that is safe to return (misconfiguration, not internals).
func isOperatorError(err error) bool {
	return errors.Is(err, auth.ErrAdminNotConfigured)
}

// decodeLenient parses a JSON body, treating malformed input as an empty
// request so missing-field validation produces the response.
func decodeLenient(body io.Reader, v any) {
	_ = json.NewDecoder(body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
