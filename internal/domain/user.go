package domain

import "time"

// Sign-in providers. Credentials is the email/password path; every other
// provider is an external identity that has already verified the email.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

type User struct {
	UserID             string     `json:"id" dynamodbav:"user_id"`
	Name               string     `json:"name" dynamodbav:"name"`
	Email              string     `json:"email" dynamodbav:"email,omitempty"`
	Phone              *string    `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash       string     `json:"-" dynamodbav:"password_hash"`
	EmailVerified      *time.Time `json:"email_verified" dynamodbav:"email_verified"`
	IsTwoFactorEnabled bool       `json:"is_two_factor_enabled" dynamodbav:"is_two_factor_enabled"`
	Role               string     `json:"role" dynamodbav:"role"`
	AuthProvider       string     `json:"auth_provider" dynamodbav:"auth_provider"` // "credentials" | "google"
	GoogleSub          string     `json:"-" dynamodbav:"google_sub"`
	CreatedAt          time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// HasPassword reports whether the account can sign in with credentials.
// OAuth-only accounts carry no hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required"`
}

type UpdateSettingsRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=1"`
	Phone              *string `json:"phone" validate:"omitempty,e164"`
	IsTwoFactorEnabled *bool   `json:"is_two_factor_enabled"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}
