package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/infrastructure/dynamo"
	"github.com/go-auth-nosql/internal/infrastructure/google"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	redisinfra "github.com/go-auth-nosql/internal/infrastructure/redis"
	"github.com/go-auth-nosql/internal/infrastructure/smtp"
	"github.com/go-auth-nosql/internal/infrastructure/sns"
	transporthttp "github.com/go-auth-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// SNS is only needed when two-factor codes are also texted.
	var smsSender sns.SMSSender
	if cfg.SMSTwoFactor {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			smsSender = sender
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	var googleVerifier *google.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = google.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	var attemptLimiter *redisinfra.AttemptLimiter
	if cfg.RedisAddr != "" {
		rdb, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		attemptLimiter = redisinfra.NewAttemptLimiter(rdb, cfg.TwoFactorMaxAttempts, cfg.TwoFactorAttemptWindow)
	}

	deps := &transporthttp.Deps{
		UserRepo:              dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:           dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		VerificationTokenRepo: dynamo.NewVerificationTokenRepo(dynamoClient, cfg.DynamoTables.VerificationTokens),
		TwoFactorTokenRepo:    dynamo.NewTwoFactorTokenRepo(dynamoClient, cfg.DynamoTables.TwoFactorTokens),
		ConfirmationRepo:      dynamo.NewTwoFactorConfirmationRepo(dynamoClient, cfg.DynamoTables.TwoFactorConfirmations),
		Mailer:                smtp.NewMailer(cfg),
		SMSSender:             smsSender,
		JWTProvider:           jwtProvider,
		GoogleVerifier:        googleVerifier,
		AttemptLimiter:        attemptLimiter,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
