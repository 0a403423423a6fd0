package domain

import "time"

// VerificationToken proves ownership of an email address. It is keyed by
// email rather than user id because it can be issued during registration.
// ExpiresAt is the Unix second the token stops being accepted. PurgeAt is
// the DynamoDB TTL attribute and lies past ExpiresAt, so a late submission
// still finds the row and is told it expired. CreatedAt is Unix nanoseconds
// and orders tokens for the same email.
type VerificationToken struct {
	TokenID   string `json:"id" dynamodbav:"token_id"`
	Token     string `json:"token" dynamodbav:"token"`
	Email     string `json:"email" dynamodbav:"email"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	PurgeAt   int64  `json:"-" dynamodbav:"purge_at,omitempty"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}

// Expired reports whether now is past the token's expiry.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(time.Unix(t.ExpiresAt, 0))
}

// TwoFactorToken is a short-lived numeric code mailed on login.
type TwoFactorToken struct {
	TokenID   string `json:"id" dynamodbav:"token_id"`
	Token     string `json:"token" dynamodbav:"token"`
	Email     string `json:"email" dynamodbav:"email"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	PurgeAt   int64  `json:"-" dynamodbav:"purge_at,omitempty"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}

func (t *TwoFactorToken) Expired(now time.Time) bool {
	return now.After(time.Unix(t.ExpiresAt, 0))
}

// TwoFactorConfirmation marks that the user passed the code check for the
// sign-in currently in flight. It is consumed by the next session issuance.
type TwoFactorConfirmation struct {
	ConfirmationID string `json:"id" dynamodbav:"confirmation_id"`
	UserID         string `json:"user_id" dynamodbav:"user_id"`
	CreatedAt      int64  `json:"created_at" dynamodbav:"created_at"`
}
