package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/id"
	"github.com/go-auth-nosql/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,max=32"`
}

// Result is the non-error outcome of an auth step. Exactly one of the
// fields is set.
type Result struct {
	Success   string          `json:"success,omitempty"`
	TwoFactor bool            `json:"two_factor,omitempty"`
	Session   *session.Result `json:"session,omitempty"`
}

type Service interface {
	// Login walks the sign-in gates in order: fields, account, email
	// verification, two-factor, session. Rejections are *Error.
	Login(ctx context.Context, req LoginRequest) (*Result, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*Result, error)
	NewVerification(ctx context.Context, token string) (*Result, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type verificationTokenStore interface {
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, tokenID string) error
}

type twoFactorTokenStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.TwoFactorToken, error)
	Delete(ctx context.Context, tokenID string) error
}

type confirmationStore interface {
	Replace(ctx context.Context, c *domain.TwoFactorConfirmation) error
}

type tokenIssuer interface {
	IssueVerificationToken(ctx context.Context, email string) (*domain.VerificationToken, error)
	IssueTwoFactorToken(ctx context.Context, email string) (*domain.TwoFactorToken, error)
}

type notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendTwoFactorEmail(ctx context.Context, email, code string) error
	SendTwoFactorSMS(ctx context.Context, phone, code string) error
}

type sessionSigner interface {
	SignIn(ctx context.Context, req session.SignInRequest) (*session.Result, error)
}

type attemptLimiter interface {
	Allow(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type service struct {
	userRepo              userStore
	verificationTokenRepo verificationTokenStore
	twoFactorTokenRepo    twoFactorTokenStore
	confirmationRepo      confirmationStore
	tokens                tokenIssuer
	notifier              notifier
	sessions              sessionSigner
	limiter               attemptLimiter
	now                   func() time.Time
}

type ServiceDeps struct {
	UserRepo              userStore
	VerificationTokenRepo verificationTokenStore
	TwoFactorTokenRepo    twoFactorTokenStore
	ConfirmationRepo      confirmationStore
	Tokens                tokenIssuer
	Notifier              notifier
	Sessions              sessionSigner
	Limiter               attemptLimiter // optional
	Now                   func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo:              deps.UserRepo,
		verificationTokenRepo: deps.VerificationTokenRepo,
		twoFactorTokenRepo:    deps.TwoFactorTokenRepo,
		confirmationRepo:      deps.ConfirmationRepo,
		tokens:                deps.Tokens,
		notifier:              deps.Notifier,
		sessions:              deps.Sessions,
		limiter:               deps.Limiter,
		now:                   now,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, reject(MsgInvalidFields, err)
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, reject(MsgEmailNotFound, err)
		}
		return nil, s.unexpected("look up user", err)
	}
	// Password-less accounts get the same answer as missing ones.
	if u.Email == "" || !u.HasPassword() {
		return nil, reject(MsgEmailNotFound, fmt.Errorf("no credentials account: %w", domain.ErrNotFound))
	}

	if u.EmailVerified == nil {
		if err := s.sendVerification(ctx, u.Email); err != nil {
			return nil, err
		}
		return &Result{Success: MsgConfirmationSent}, nil
	}

	if u.IsTwoFactorEnabled {
		if req.Code == "" {
			if err := s.sendTwoFactorCode(ctx, u); err != nil {
				return nil, err
			}
			return &Result{TwoFactor: true}, nil
		}
		if err := s.confirmTwoFactor(ctx, u, req.Code); err != nil {
			return nil, err
		}
	}

	res, err := s.sessions.SignIn(ctx, session.SignInRequest{
		Provider: domain.ProviderCredentials,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, reject(MsgInvalidCredentials, err)
		}
		return nil, s.unexpected("sign in", err)
	}
	return &Result{Session: res}, nil
}

// confirmTwoFactor checks code against the newest token for the user's
// email. The token is deleted as soon as it is found, whatever the outcome.
func (s *service) confirmTwoFactor(ctx context.Context, u *domain.User, code string) error {
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, u.Email); err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				return reject(MsgTooManyAttempts, err)
			}
			return s.unexpected("check attempt limit", err)
		}
	}

	tok, err := s.twoFactorTokenRepo.GetByEmail(ctx, u.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reject(MsgInvalidCode, fmt.Errorf("no two-factor token: %w", domain.ErrUnauthorized))
		}
		return s.unexpected("look up two-factor token", err)
	}
	if err := s.twoFactorTokenRepo.Delete(ctx, tok.TokenID); err != nil {
		return s.unexpected("delete two-factor token", err)
	}

	if subtle.ConstantTimeCompare([]byte(tok.Token), []byte(code)) != 1 {
		return reject(MsgInvalidCode, fmt.Errorf("two-factor code mismatch: %w", domain.ErrUnauthorized))
	}
	if tok.Expired(s.now()) {
		return reject(MsgCodeExpired, fmt.Errorf("two-factor code expired: %w", domain.ErrExpired))
	}

	c := &domain.TwoFactorConfirmation{
		ConfirmationID: id.New(),
		UserID:         u.UserID,
		CreatedAt:      s.now().UnixNano(),
	}
	if err := s.confirmationRepo.Replace(ctx, c); err != nil {
		return s.unexpected("store two-factor confirmation", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, u.Email); err != nil {
			slog.Warn("failed to reset two-factor attempts", "user_id", u.UserID, "err", err)
		}
	}
	return nil
}

func (s *service) sendVerification(ctx context.Context, email string) error {
	t, err := s.tokens.IssueVerificationToken(ctx, email)
	if err != nil {
		return s.unexpected("issue verification token", err)
	}
	if err := s.notifier.SendVerificationEmail(ctx, email, t.Token); err != nil {
		return s.unexpected("send verification email", err)
	}
	return nil
}

func (s *service) sendTwoFactorCode(ctx context.Context, u *domain.User) error {
	t, err := s.tokens.IssueTwoFactorToken(ctx, u.Email)
	if err != nil {
		return s.unexpected("issue two-factor token", err)
	}
	if err := s.notifier.SendTwoFactorEmail(ctx, u.Email, t.Token); err != nil {
		return s.unexpected("send two-factor email", err)
	}
	if u.Phone != nil && *u.Phone != "" {
		if err := s.notifier.SendTwoFactorSMS(ctx, *u.Phone, t.Token); err != nil {
			slog.Warn("failed to text two-factor code", "user_id", u.UserID, "err", err)
		}
	}
	return nil
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*Result, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, reject(MsgInvalidFields, err)
	}

	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, reject(MsgEmailInUse, fmt.Errorf("email %s: %w", req.Email, domain.ErrConflict))
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, s.unexpected("look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, s.unexpected("hash password", err)
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		AuthProvider: domain.ProviderCredentials,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, reject(MsgEmailInUse, err)
		}
		return nil, s.unexpected("create user", err)
	}

	if err := s.sendVerification(ctx, u.Email); err != nil {
		return nil, err
	}
	return &Result{Success: MsgConfirmationSent}, nil
}

func (s *service) NewVerification(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return nil, reject(MsgMissingToken, fmt.Errorf("empty token: %w", domain.ErrValidation))
	}
	t, err := s.verificationTokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, reject(MsgTokenNotFound, err)
		}
		return nil, s.unexpected("look up verification token", err)
	}
	now := s.now()
	if t.Expired(now) {
		return nil, reject(MsgTokenExpired, fmt.Errorf("verification token: %w", domain.ErrExpired))
	}

	u, err := s.userRepo.GetByEmail(ctx, t.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, reject(MsgEmailNotFound, err)
		}
		return nil, s.unexpected("look up user", err)
	}

	err = s.userRepo.Update(ctx, u.UserID, map[string]interface{}{
		"email_verified": now.UTC(),
		"email":          t.Email,
	})
	if err != nil {
		return nil, s.unexpected("mark email verified", err)
	}
	if err := s.verificationTokenRepo.Delete(ctx, t.TokenID); err != nil {
		slog.Warn("failed to delete verification token", "token_id", t.TokenID, "err", err)
	}
	return &Result{Success: MsgEmailVerified}, nil
}

// unexpected logs the underlying failure and hides it behind a generic
// message. Delivery failures keep their own message.
func (s *service) unexpected(step string, err error) *Error {
	slog.Error("auth step failed", "step", step, "err", err)
	if errors.Is(err, domain.ErrDelivery) {
		return reject(MsgDeliveryFailed, err)
	}
	return reject(MsgSomethingWrong, err)
}
