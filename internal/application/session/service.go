package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/infrastructure/google"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	"github.com/go-auth-nosql/internal/pkg/id"
	pkgtoken "github.com/go-auth-nosql/internal/pkg/token"
)

// SignInRequest selects a provider and carries that provider's proof of
// identity. Only the fields of the selected provider are read.
type SignInRequest struct {
	Provider string // domain.ProviderCredentials or domain.ProviderGoogle

	Email    string
	Password string

	IDToken string
}

type Result struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Session      *domain.Session `json:"session"`
}

type Service interface {
	SignIn(ctx context.Context, req SignInRequest) (*Result, error)
	Refresh(ctx context.Context, refreshToken string) (*Result, error)
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Disable(ctx context.Context, sessionID string) error
}

type confirmationStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error)
	Delete(ctx context.Context, confirmationID string) error
}

type credentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Identity, error)
}

type jwtSigner interface {
	Sign(c jwtinfra.Claims) (string, error)
}

type service struct {
	userRepo         userStore
	sessionRepo      sessionStore
	confirmationRepo confirmationStore
	credentials      credentialVerifier
	googleVerifier   googleVerifier
	jwtProvider      jwtSigner
	refreshTokenDur  time.Duration
	now              func() time.Time
}

type ServiceDeps struct {
	UserRepo         userStore
	SessionRepo      sessionStore
	ConfirmationRepo confirmationStore
	Credentials      credentialVerifier
	GoogleVerifier   googleVerifier // nil disables the google provider
	JWTProvider      jwtSigner
	RefreshTokenDur  time.Duration
	Now              func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo:         deps.UserRepo,
		sessionRepo:      deps.SessionRepo,
		confirmationRepo: deps.ConfirmationRepo,
		credentials:      deps.Credentials,
		googleVerifier:   deps.GoogleVerifier,
		jwtProvider:      deps.JWTProvider,
		refreshTokenDur:  deps.RefreshTokenDur,
		now:              now,
	}
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*Result, error) {
	var (
		u   *domain.User
		err error
	)
	switch req.Provider {
	case domain.ProviderCredentials:
		u, err = s.authorizeCredentials(ctx, req.Email, req.Password)
	case domain.ProviderGoogle:
		u, err = s.authorizeGoogle(ctx, req.IDToken)
	default:
		return nil, fmt.Errorf("unknown provider %q: %w", req.Provider, domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if err := s.allowSignIn(ctx, u, req.Provider); err != nil {
		return nil, err
	}
	return s.issue(ctx, u, req.Provider)
}

func (s *service) authorizeCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

func (s *service) authorizeGoogle(ctx context.Context, idToken string) (*domain.User, error) {
	if s.googleVerifier == nil {
		return nil, fmt.Errorf("google sign-in not configured: %w", domain.ErrUnauthorized)
	}
	ident, err := s.googleVerifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !ident.EmailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	if ident.Email == "" || ident.Sub == "" {
		return nil, fmt.Errorf("google token missing email or sub: %w", domain.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByEmail(ctx, ident.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if u == nil {
		return s.createGoogleUser(ctx, ident)
	}

	switch {
	case u.GoogleSub == ident.Sub:
		return u, nil
	case u.GoogleSub != "":
		return nil, fmt.Errorf("google account mismatch: %w", domain.ErrUnauthorized)
	case !u.HasPassword():
		// An account without a password was provisioned by someone else;
		// nothing proves the caller owns it.
		return nil, fmt.Errorf("account cannot be linked: %w", domain.ErrUnauthorized)
	}

	updates := map[string]interface{}{"google_sub": ident.Sub}
	if u.EmailVerified == nil {
		now := s.now().UTC()
		updates["email_verified"] = now
		u.EmailVerified = &now
	}
	if err := s.userRepo.Update(ctx, u.UserID, updates); err != nil {
		return nil, err
	}
	u.GoogleSub = ident.Sub
	slog.Info("linked google account", "user_id", u.UserID)
	return u, nil
}

func (s *service) createGoogleUser(ctx context.Context, ident *google.Identity) (*domain.User, error) {
	now := s.now().UTC()
	name := ident.Name
	if name == "" {
		name = ident.Email
	}
	u := &domain.User{
		UserID:        id.New(),
		Name:          name,
		Email:         ident.Email,
		EmailVerified: &now,
		Role:          domain.RoleUser,
		AuthProvider:  domain.ProviderGoogle,
		GoogleSub:     ident.Sub,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// allowSignIn is the last gate before a session exists. External providers
// have already proven the email. Credentials need a verified email, and a
// pending two-factor confirmation when two-factor is on; the confirmation
// is consumed here.
func (s *service) allowSignIn(ctx context.Context, u *domain.User, provider string) error {
	if provider != domain.ProviderCredentials {
		return nil
	}
	if u.EmailVerified == nil {
		return fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}
	if !u.IsTwoFactorEnabled {
		return nil
	}
	c, err := s.confirmationRepo.GetByUserID(ctx, u.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("two-factor confirmation missing: %w", domain.ErrUnauthorized)
		}
		return err
	}
	if err := s.confirmationRepo.Delete(ctx, c.ConfirmationID); err != nil {
		return err
	}
	return nil
}

func (s *service) issue(ctx context.Context, u *domain.User, provider string) (*Result, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Provider:         provider,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.sign(u, sess)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &Result{AccessToken: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

// sign stamps claims from the user record as it is now, so role and
// two-factor changes show up on the next refresh.
func (s *service) sign(u *domain.User, sess *domain.Session) (string, error) {
	return s.jwtProvider.Sign(jwtinfra.Claims{
		UserID:             u.UserID,
		SessionID:          sess.SessionID,
		Role:               u.Role,
		IsTwoFactorEnabled: u.IsTwoFactorEnabled,
		Provider:           sess.Provider,
	})
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	now := s.now()
	if sess.RefreshExpiresAt < now.Unix() {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	newExpiry := now.Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	bearer, err := s.sign(u, sess)
	if err != nil {
		return nil, err
	}
	sess.RefreshToken = newToken
	sess.RefreshExpiresAt = newExpiry
	sess.User = u
	return &Result{AccessToken: bearer, RefreshToken: newToken, Session: sess}, nil
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session ended: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}
