package google

import (
	"context"
	"fmt"

	"github.com/go-auth-nosql/internal/domain"
	"google.golang.org/api/idtoken"
)

// Identity holds the verified claims extracted from a Google ID token.
type Identity struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
}

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the Google ID token and returns the external identity.
// Returns a domain.ErrUnauthorized-wrapped error if the token is invalid.
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	name, _ := p.Claims["name"].(string)
	return &Identity{
		Sub:           p.Subject,
		Email:         email,
		EmailVerified: emailVerified,
		Name:          name,
	}, nil
}
