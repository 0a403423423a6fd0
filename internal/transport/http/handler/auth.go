package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-nosql/internal/application/auth"
	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/domain"
)

// AuthHandler handles the public sign-in, registration and verification endpoints.
type AuthHandler struct {
	svc      auth.Service
	sessions session.Service
}

func NewAuthHandler(svc auth.Service, sessions session.Service) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, auth.MsgInvalidFields)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope(res))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, auth.MsgInvalidFields)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authEnvelope(res))
}

// NewVerification accepts the token from the JSON body or the ?token= query
// parameter carried by the mailed link.
func (h *AuthHandler) NewVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Token == "" {
		req.Token = r.URL.Query().Get("token")
	}
	res, err := h.svc.NewVerification(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope(res))
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "id_token required")
		return
	}
	res, err := h.sessions.SignIn(r.Context(), session.SignInRequest{
		Provider: domain.ProviderGoogle,
		IDToken:  req.IDToken,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionEnvelope(res))
}
