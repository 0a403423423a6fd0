package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort    string
	AppEnv     string
	AppBaseURL string // used to build verification links

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath      string
	JWTPublicKeyPath       string
	JWTExpiry              time.Duration
	RefreshTokenExpiryDays int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion    string
	SMSTwoFactor bool // also text two-factor codes to users with a phone number

	GoogleClientID string

	RedisAddr              string // empty disables the two-factor attempt limiter
	RedisPassword          string
	TwoFactorMaxAttempts   int
	TwoFactorAttemptWindow time.Duration

	VerificationTokenTTL time.Duration
	TwoFactorTokenTTL    time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                  string
	Sessions               string
	VerificationTokens     string
	TwoFactorTokens        string
	TwoFactorConfirmations string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AppBaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                  getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:               getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			VerificationTokens:     getEnv("DYNAMO_TABLE_VERIFICATION_TOKENS", "verification_tokens"),
			TwoFactorTokens:        getEnv("DYNAMO_TABLE_TWO_FACTOR_TOKENS", "two_factor_tokens"),
			TwoFactorConfirmations: getEnv("DYNAMO_TABLE_TWO_FACTOR_CONFIRMATIONS", "two_factor_confirmations"),
		},
		JWTPrivateKeyPath:      getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:       getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:              getEnvDuration("JWT_EXPIRY", 15*time.Minute),
		RefreshTokenExpiryDays: getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30),
		SMTPHost:               getEnv("SMTP_HOST", "localhost"),
		SMTPPort:               getEnv("SMTP_PORT", "1025"),
		SMTPFrom:               getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SNSRegion:              getEnv("SNS_REGION", "us-east-1"),
		SMSTwoFactor:           getEnvBool("SMS_TWO_FACTOR", false),
		GoogleClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		TwoFactorMaxAttempts:   getEnvInt("TWO_FACTOR_MAX_ATTEMPTS", 5),
		TwoFactorAttemptWindow: getEnvDuration("TWO_FACTOR_ATTEMPT_WINDOW", 15*time.Minute),
		VerificationTokenTTL:   getEnvDuration("VERIFICATION_TOKEN_TTL", time.Hour),
		TwoFactorTokenTTL:      getEnvDuration("TWO_FACTOR_TOKEN_TTL", 5*time.Minute),
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// RefreshTokenExpiry returns the refresh-token lifetime as a duration.
func (c *Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.RefreshTokenExpiryDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
