package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-auth-nosql/internal/application/auth"
	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps every sign-in outcome. Exactly one of Success,
// TwoFactor or the token fields is populated.
type AuthEnvelope struct {
	Success      string          `json:"success,omitempty"`
	TwoFactor    bool            `json:"two_factor,omitempty"`
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session"`
}

func authEnvelope(res *auth.Result) AuthEnvelope {
	if res.Session != nil {
		return sessionEnvelope(res.Session)
	}
	return AuthEnvelope{Success: res.Success, TwoFactor: res.TwoFactor}
}

func sessionEnvelope(res *session.Result) AuthEnvelope {
	return AuthEnvelope{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Session:      res.Session,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// statusFor maps a domain sentinel to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Auth rejections
// carry their own user-facing message; internal failures are logged and
// never echoed.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	var ae *auth.Error
	if errors.As(err, &ae) {
		writeError(w, status, ae.Message)
		return
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
