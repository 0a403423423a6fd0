package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-auth-nosql/internal/application/auth"
	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/domain"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	"github.com/go-auth-nosql/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Register(ctx context.Context, req domain.RegisterRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) NewVerification(ctx context.Context, token string) (*auth.Result, error) {
	args := m.Called(ctx, token)
	if r, _ := args.Get(0).(*auth.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) SignIn(ctx context.Context, req session.SignInRequest) (*session.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionSvc) Refresh(ctx context.Context, refreshToken string) (*session.Result, error) {
	args := m.Called(ctx, refreshToken)
	if r, _ := args.Get(0).(*session.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionSvc) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}
func (m *mockUserSvc) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	args := m.Called(ctx, userID, role)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func jsonReq(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withClaims attaches claims the way the auth middleware does.
func withClaims(r *http.Request, userID, sessionID, role string) *http.Request {
	c := &jwtinfra.Claims{UserID: userID, SessionID: sessionID, Role: role}
	return r.WithContext(middleware.WithClaims(r.Context(), c))
}
