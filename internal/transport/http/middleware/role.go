package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-auth-nosql/internal/domain"
)

type userGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// RequireRole returns middleware that allows access only to users whose JWT
// role matches one of the provided role names (e.g. domain.RoleAdmin).
// The role is the one stamped when the token was last signed.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, role := range allowedRoles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}

// RequireLiveRole is RequireRole checked against the stored user as well as
// the token, so a demotion takes effect before the access token expires.
// Tokens that already fail the claim check never reach the store.
func RequireLiveRole(users userGetter, allowedRoles ...string) func(http.Handler) http.Handler {
	gate := RequireRole(allowedRoles...)
	return func(next http.Handler) http.Handler {
		return gate(liveClaims(users)(gate(next)))
	}
}

// liveClaims replaces the role and two-factor flag in the request claims
// with the values on the user record.
func liveClaims(users userGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err != nil {
				slog.Error("load user for role check", "user_id", claims.UserID, "err", err)
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
			live := *claims
			live.Role = u.Role
			live.IsTwoFactorEnabled = u.IsTwoFactorEnabled
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), &live)))
		})
	}
}
