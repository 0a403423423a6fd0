package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-auth-nosql/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Verifier checks an email/password pair against the stored hash.
type Verifier interface {
	// VerifyCredentials returns the matching user, or nil when the account
	// is missing, has no password, or the password is wrong. An error is
	// returned only for storage failures.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type verifier struct {
	users userStore
}

func NewVerifier(users userStore) Verifier {
	return &verifier{users: users}
}

// decoyHash is compared when there is no real hash so unknown emails cost
// the same bcrypt round as wrong passwords.
var decoyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("decoy-password"), bcrypt.DefaultCost)
	return h
})

func (v *verifier) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
			return nil, nil
		}
		return nil, fmt.Errorf("look up credentials: %w", err)
	}
	if !u.HasPassword() {
		_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return u, nil
}
