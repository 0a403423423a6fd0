package google

import (
	"context"
	"errors"
	"testing"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestVerify_ExtractsClaims(t *testing.T) {
	v := NewVerifier("client-1")
	v.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "tok", token)
		assert.Equal(t, "client-1", audience)
		return &idtoken.Payload{
			Subject: "sub-1",
			Claims: map[string]interface{}{
				"email":          "a@gmail.com",
				"email_verified": true,
				"name":           "Alice",
			},
		}, nil
	}

	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Sub: "sub-1", Email: "a@gmail.com", EmailVerified: true, Name: "Alice"}, id)
}

func TestVerify_InvalidToken(t *testing.T) {
	v := NewVerifier("client-1")
	v.validate = func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("bad signature")
	}

	_, err := v.Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
