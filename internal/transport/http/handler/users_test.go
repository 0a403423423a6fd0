package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMe(t *testing.T) {
	us := &mockUserSvc{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "a@x.com", GoogleSub: "hidden-sub"}, nil)
	h := NewUserHandler(us)

	rr := serve(h.Me, withClaims(jsonReq(http.MethodGet, "/v1/users/me", ""), "u1", "s1", domain.RoleUser))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"a@x.com"`)
	assert.NotContains(t, rr.Body.String(), "hidden-sub")
}

func TestUpdateSettings_ForbiddenForOAuth(t *testing.T) {
	us := &mockUserSvc{}
	enable := true
	us.On("UpdateSettings", mock.Anything, "u2", domain.UpdateSettingsRequest{IsTwoFactorEnabled: &enable}).
		Return(nil, domain.ErrForbidden)
	h := NewUserHandler(us)

	rr := serve(h.UpdateSettings, withClaims(jsonReq(http.MethodPut, "/v1/users/me/settings", `{"is_two_factor_enabled":true}`), "u2", "s2", domain.RoleUser))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	us := &mockUserSvc{}
	us.On("ChangePassword", mock.Anything, "u1", domain.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "newsecret"}).
		Return(domain.ErrUnauthorized)
	h := NewUserHandler(us)

	rr := serve(h.ChangePassword, withClaims(jsonReq(http.MethodPut, "/v1/users/me/password", `{"current_password":"x","new_password":"newsecret"}`), "u1", "s1", domain.RoleUser))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSetRole_UsesPathParam(t *testing.T) {
	us := &mockUserSvc{}
	us.On("SetRole", mock.Anything, "u9", domain.RoleAdmin).Return(&domain.User{UserID: "u9", Role: domain.RoleAdmin}, nil)
	h := NewUserHandler(us)

	r := chi.NewRouter()
	r.Put("/v1/users/{id}/role", h.SetRole)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonReq(http.MethodPut, "/v1/users/u9/role", `{"role":"ADMIN"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"ADMIN"`)
}

func TestSetRole_InvalidRole(t *testing.T) {
	us := &mockUserSvc{}
	us.On("SetRole", mock.Anything, "u9", "ROOT").Return(nil, domain.ErrValidation)
	h := NewUserHandler(us)

	r := chi.NewRouter()
	r.Put("/v1/users/{id}/role", h.SetRole)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonReq(http.MethodPut, "/v1/users/u9/role", `{"role":"ROOT"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthPing(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/health-check/{action}", NewHealthHandler().Ping)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health-check/other", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
