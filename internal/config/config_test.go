package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "verification_tokens", cfg.DynamoTables.VerificationTokens)
	assert.Equal(t, time.Hour, cfg.VerificationTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.TwoFactorTokenTTL)
	assert.Equal(t, 5, cfg.TwoFactorMaxAttempts)
	assert.False(t, cfg.SMSTwoFactor)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_BASE_URL", "https://auth.example.com/")
	t.Setenv("TWO_FACTOR_TOKEN_TTL", "2m")
	t.Setenv("TWO_FACTOR_MAX_ATTEMPTS", "3")
	t.Setenv("SMS_TWO_FACTOR", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com,https://b.com")

	cfg := Load()

	assert.Equal(t, "https://auth.example.com", cfg.AppBaseURL)
	assert.Equal(t, 2*time.Minute, cfg.TwoFactorTokenTTL)
	assert.Equal(t, 3, cfg.TwoFactorMaxAttempts)
	assert.True(t, cfg.SMSTwoFactor)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")
	t.Setenv("REFRESH_TOKEN_EXPIRY_DAYS", "many")
	t.Setenv("TWO_FACTOR_ATTEMPT_WINDOW", "-1m")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, 30, cfg.RefreshTokenExpiryDays)
	assert.Equal(t, 15*time.Minute, cfg.TwoFactorAttemptWindow)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenExpiry())
}
