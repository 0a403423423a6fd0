package http

import (
	"net/http"

	"github.com/go-auth-nosql/internal/application/auth"
	"github.com/go-auth-nosql/internal/application/credential"
	"github.com/go-auth-nosql/internal/application/notify"
	"github.com/go-auth-nosql/internal/application/session"
	"github.com/go-auth-nosql/internal/application/token"
	"github.com/go-auth-nosql/internal/application/user"
	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	tokenSvc := token.NewService(token.ServiceDeps{
		VerificationRepo: deps.VerificationTokenRepo,
		TwoFactorRepo:    deps.TwoFactorTokenRepo,
		VerificationTTL:  cfg.VerificationTokenTTL,
		TwoFactorTTL:     cfg.TwoFactorTokenTTL,
	})
	notifier := notify.New(notify.Deps{
		Mailer:    deps.Mailer,
		SMSSender: deps.SMSSender,
		BaseURL:   cfg.AppBaseURL,
	})

	sessionDeps := session.ServiceDeps{
		UserRepo:         deps.UserRepo,
		SessionRepo:      deps.SessionRepo,
		ConfirmationRepo: deps.ConfirmationRepo,
		Credentials:      credential.NewVerifier(deps.UserRepo),
		JWTProvider:      deps.JWTProvider,
		RefreshTokenDur:  cfg.RefreshTokenExpiry(),
	}
	// Optional pieces stay nil interfaces when absent.
	if deps.GoogleVerifier != nil {
		sessionDeps.GoogleVerifier = deps.GoogleVerifier
	}
	sessionSvc := session.NewService(sessionDeps)

	authDeps := auth.ServiceDeps{
		UserRepo:              deps.UserRepo,
		VerificationTokenRepo: deps.VerificationTokenRepo,
		TwoFactorTokenRepo:    deps.TwoFactorTokenRepo,
		ConfirmationRepo:      deps.ConfirmationRepo,
		Tokens:                tokenSvc,
		Notifier:              notifier,
		Sessions:              sessionSvc,
	}
	if deps.AttemptLimiter != nil {
		authDeps.Limiter = deps.AttemptLimiter
	}
	authSvc := auth.NewService(authDeps)
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, sessionSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)

			r.Post("/auth/login", authH.Login)
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/new-verification", authH.NewVerification)
			r.Post("/auth/google", authH.Google)
			r.Post("/sessions/refresh", sessionH.Refresh)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/settings", userH.UpdateSettings)
			r.Put("/users/me/password", userH.ChangePassword)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireLiveRole(deps.UserRepo, domain.RoleAdmin))

				r.Get("/users/{id}", userH.Get)
				r.Put("/users/{id}/role", userH.SetRole)
			})
		})
	})

	return r
}
