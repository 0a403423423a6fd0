package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

// --- helpers ---

func newSvc(us *mockUserStore) Service {
	return NewService(ServiceDeps{UserRepo: us})
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func credentialsUser(t *testing.T) *domain.User {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{UserID: "u1", Email: "a@x.com", PasswordHash: string(h), Role: domain.RoleUser}
}

func googleUser() *domain.User {
	return &domain.User{UserID: "u2", Email: "g@x.com", Role: domain.RoleUser, AuthProvider: domain.ProviderGoogle, GoogleSub: "sub"}
}

// --- UpdateSettings ---

func TestUpdateSettings_EnableTwoFactor(t *testing.T) {
	us := &mockUserStore{}
	u := credentialsUser(t)
	updated := *u
	updated.IsTwoFactorEnabled = true
	us.On("Get", mock.Anything, "u1").Return(u, nil).Once()
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"is_two_factor_enabled": true}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&updated, nil).Once()

	got, err := newSvc(us).UpdateSettings(context.Background(), "u1", domain.UpdateSettingsRequest{IsTwoFactorEnabled: boolPtr(true)})

	require.NoError(t, err)
	assert.True(t, got.IsTwoFactorEnabled)
	us.AssertExpectations(t)
}

func TestUpdateSettings_TwoFactorForbiddenForOAuthAccount(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u2").Return(googleUser(), nil)

	_, err := newSvc(us).UpdateSettings(context.Background(), "u2", domain.UpdateSettingsRequest{IsTwoFactorEnabled: boolPtr(true)})

	assert.True(t, errors.Is(err, domain.ErrForbidden))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettings_NameAndPhone(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u2").Return(googleUser(), nil)
	us.On("Update", mock.Anything, "u2", map[string]interface{}{"name": "Gee", "phone": "+15550001111"}).Return(nil)

	_, err := newSvc(us).UpdateSettings(context.Background(), "u2", domain.UpdateSettingsRequest{
		Name:  strPtr("Gee"),
		Phone: strPtr("+15550001111"),
	})

	require.NoError(t, err)
	us.AssertCalled(t, "Update", mock.Anything, "u2", mock.Anything)
}

func TestUpdateSettings_InvalidPhone(t *testing.T) {
	us := &mockUserStore{}

	_, err := newSvc(us).UpdateSettings(context.Background(), "u1", domain.UpdateSettingsRequest{Phone: strPtr("555-0000")})

	assert.True(t, errors.Is(err, domain.ErrValidation))
	us.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUpdateSettings_NoChangesSkipsWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u2").Return(googleUser(), nil)

	got, err := newSvc(us).UpdateSettings(context.Background(), "u2", domain.UpdateSettingsRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- ChangePassword ---

func TestChangePassword_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(credentialsUser(t), nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(u map[string]interface{}) bool {
		h, ok := u["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(h), []byte("newsecret")) == nil
	})).Return(nil)

	err := newSvc(us).ChangePassword(context.Background(), "u1", domain.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(credentialsUser(t), nil)

	err := newSvc(us).ChangePassword(context.Background(), "u1", domain.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})

	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_OAuthAccount(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u2").Return(googleUser(), nil)

	err := newSvc(us).ChangePassword(context.Background(), "u2", domain.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "newsecret"})

	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- SetRole ---

func TestSetRole_Admin(t *testing.T) {
	us := &mockUserStore{}
	promoted := credentialsUser(t)
	promoted.Role = domain.RoleAdmin
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"role": domain.RoleAdmin}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(promoted, nil)

	got, err := newSvc(us).SetRole(context.Background(), "u1", domain.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestSetRole_Unknown(t *testing.T) {
	us := &mockUserStore{}

	_, err := newSvc(us).SetRole(context.Background(), "u1", "ROOT")

	assert.True(t, errors.Is(err, domain.ErrValidation))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetRole_UnknownUserIsNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "no-such-user", map[string]interface{}{"role": domain.RoleAdmin}).
		Return(fmt.Errorf("update user: %w", domain.ErrNotFound))

	got, err := newSvc(us).SetRole(context.Background(), "no-such-user", domain.RoleAdmin)

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	us.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGet_PropagatesNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := newSvc(us).Get(context.Background(), "missing")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
