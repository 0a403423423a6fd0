package user

import (
	"context"
	"fmt"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName               = "name"
	fieldPhone              = "phone"
	fieldIsTwoFactorEnabled = "is_two_factor_enabled"
	fieldRole               = "role"
	fieldPasswordHash       = "password_hash"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateSettings applies the non-nil fields of req. Two-factor codes are
// only checked on the credentials path, so accounts without a password
// cannot turn it on.
func (s *service) UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.IsTwoFactorEnabled != nil {
		if !u.HasPassword() {
			return nil, fmt.Errorf("two-factor requires a password account: %w", domain.ErrForbidden)
		}
		updates[fieldIsTwoFactorEnabled] = *req.IsTwoFactorEnabled
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasPassword() {
		return fmt.Errorf("account has no password: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// SetRole changes the role stamped into the user's next token.
func (s *service) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q: %w", role, domain.ErrValidation)
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{fieldRole: role}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
