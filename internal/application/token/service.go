package token

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/id"
	pkgtoken "github.com/go-auth-nosql/internal/pkg/token"
)

// twoFactorCodeDigits is the length of the code users type from their inbox.
const twoFactorCodeDigits = 6

// expiredRetention keeps an expired token in the store before the TTL
// sweeper may delete it.
const expiredRetention = 24 * time.Hour

// Service issues verification and two-factor tokens. Each issue is a
// rotation: any live token for the same email is removed in the same
// store transaction that persists the new one.
type Service interface {
	IssueVerificationToken(ctx context.Context, email string) (*domain.VerificationToken, error)
	IssueTwoFactorToken(ctx context.Context, email string) (*domain.TwoFactorToken, error)
}

type verificationStore interface {
	Replace(ctx context.Context, t *domain.VerificationToken) error
}

type twoFactorStore interface {
	Replace(ctx context.Context, t *domain.TwoFactorToken) error
}

type service struct {
	verifications   verificationStore
	twoFactors      twoFactorStore
	verificationTTL time.Duration
	twoFactorTTL    time.Duration
	now             func() time.Time
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	TwoFactorRepo    twoFactorStore
	VerificationTTL  time.Duration
	TwoFactorTTL     time.Duration
	Now              func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		verifications:   deps.VerificationRepo,
		twoFactors:      deps.TwoFactorRepo,
		verificationTTL: deps.VerificationTTL,
		twoFactorTTL:    deps.TwoFactorTTL,
		now:             now,
	}
}

func (s *service) IssueVerificationToken(ctx context.Context, email string) (*domain.VerificationToken, error) {
	value, err := pkgtoken.NewVerificationToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &domain.VerificationToken{
		TokenID:   id.New(),
		Token:     value,
		Email:     email,
		ExpiresAt: now.Add(s.verificationTTL).Unix(),
		PurgeAt:   now.Add(s.verificationTTL + expiredRetention).Unix(),
		CreatedAt: now.UnixNano(),
	}
	if err := s.verifications.Replace(ctx, t); err != nil {
		return nil, fmt.Errorf("rotate verification token: %w", err)
	}
	return t, nil
}

func (s *service) IssueTwoFactorToken(ctx context.Context, email string) (*domain.TwoFactorToken, error) {
	code, err := pkgtoken.NewNumericCode(twoFactorCodeDigits)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &domain.TwoFactorToken{
		TokenID:   id.New(),
		Token:     code,
		Email:     email,
		ExpiresAt: now.Add(s.twoFactorTTL).Unix(),
		PurgeAt:   now.Add(s.twoFactorTTL + expiredRetention).Unix(),
		CreatedAt: now.UnixNano(),
	}
	if err := s.twoFactors.Replace(ctx, t); err != nil {
		return nil, fmt.Errorf("rotate two-factor token: %w", err)
	}
	return t, nil
}
