package http

import (
	"github.com/go-auth-nosql/internal/infrastructure/dynamo"
	"github.com/go-auth-nosql/internal/infrastructure/google"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	redisinfra "github.com/go-auth-nosql/internal/infrastructure/redis"
	"github.com/go-auth-nosql/internal/infrastructure/smtp"
	"github.com/go-auth-nosql/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo              *dynamo.UserRepo
	SessionRepo           *dynamo.SessionRepo
	VerificationTokenRepo *dynamo.VerificationTokenRepo
	TwoFactorTokenRepo    *dynamo.TwoFactorTokenRepo
	ConfirmationRepo      *dynamo.TwoFactorConfirmationRepo
	Mailer                smtp.Mailer
	SMSSender             sns.SMSSender // nil unless SMS_TWO_FACTOR is set
	JWTProvider           *jwtinfra.Provider
	GoogleVerifier        *google.Verifier           // nil when GOOGLE_CLIENT_ID is unset
	AttemptLimiter        *redisinfra.AttemptLimiter // nil when REDIS_ADDR is unset
}
