package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-auth-nosql/internal/domain"
)

// Notifier delivers sign-in tokens to users.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendTwoFactorEmail(ctx context.Context, email, code string) error
	// SendTwoFactorSMS is a no-op when SMS delivery is not configured.
	SendTwoFactorSMS(ctx context.Context, phone, code string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type notifier struct {
	mailer  mailer
	sms     smsSender
	baseURL string
}

type Deps struct {
	Mailer    mailer
	SMSSender smsSender // optional
	BaseURL   string    // public origin used for confirmation links
}

func New(deps Deps) Notifier {
	return &notifier{mailer: deps.Mailer, sms: deps.SMSSender, baseURL: deps.BaseURL}
}

// VerificationLink returns the confirmation URL mailed for token.
func VerificationLink(baseURL, token string) string {
	return baseURL + "/auth/new-verification?token=" + url.QueryEscape(token)
}

func (n *notifier) SendVerificationEmail(_ context.Context, email, token string) error {
	body := "Click the link below to confirm your email.\n\n" + VerificationLink(n.baseURL, token) + "\n"
	if err := n.mailer.SendEmail(email, "Confirm your email", body); err != nil {
		return fmt.Errorf("send verification email: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (n *notifier) SendTwoFactorEmail(_ context.Context, email, code string) error {
	if err := n.mailer.SendEmail(email, "2FA Code", "Your 2FA code: "+code+"\n"); err != nil {
		return fmt.Errorf("send two-factor email: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (n *notifier) SendTwoFactorSMS(ctx context.Context, phone, code string) error {
	if n.sms == nil {
		return nil
	}
	if err := n.sms.SendSMS(ctx, phone, "Your 2FA code: "+code); err != nil {
		return fmt.Errorf("send two-factor sms: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}
