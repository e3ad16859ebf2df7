package handlers

import (
	"context"
	"net/http"
	"time"

	"SpeakShift/internal/audit"
	"SpeakShift/internal/auth"
	"SpeakShift/internal/config"
	"SpeakShift/internal/middleware"
	"SpeakShift/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ReadinessChecker проверяет готовность зависимостей (БД).
type ReadinessChecker func(ctx context.Context) error

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	storageService *service.StorageService,
	recorder *audit.Recorder,
	issuer *auth.Issuer,
	ready ReadinessChecker,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	middleware.SetLogger(logger)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover)
	r.Use(middleware.WithLogging)
	r.Use(middleware.Metrics)
	r.Use(middleware.WithGzip)
	r.Use(cors.Handler(corsOptions(config)))

	// Handlers
	authHandler := NewAuthHandler(userService, logger, config)
	userHandler := NewUserHandler(userService, logger)
	storageHandler := NewStorageHandler(storageService, logger, config)
	healthHandler := NewHealthHandler(ready)

	authn := middleware.Authenticated(issuer, userService)
	adminOnly := middleware.RequireRole("admin")
	audited := func(fn, file string) func(http.Handler) http.Handler {
		return audit.Middleware(recorder, fn, file)
	}

	r.Get("/", healthHandler.Welcome)
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			if config.IsProduction() {
				r.Use(middleware.RateLimit(rate.Every(3*time.Second), 20, 10*time.Minute))
			}
			r.With(audited("Register", "auth.go")).Post("/register", authHandler.Register)
			r.With(audited("Login", "auth.go")).Post("/login", authHandler.Login)
			r.With(audited("Logout", "auth.go"), authn).Get("/logout", authHandler.Logout)
			r.With(audited("RefreshToken", "auth.go"), authn).Get("/refresh-token", authHandler.RefreshToken)
			r.With(audited("ForgotPassword", "auth.go")).Post("/forgot-password", authHandler.ForgotPassword)
			r.With(audited("ResetPassword", "auth.go")).Post("/reset-password/{token}", authHandler.ResetPassword)
			r.With(audited("UpdatePassword", "auth.go"), authn).Post("/update-password", authHandler.UpdatePassword)
		})

		// User routes
		r.Route("/user", func(r chi.Router) {
			r.With(audited("Me", "user.go"), authn).Get("/me", userHandler.Me)
			r.With(audited("UpdateProfile", "user.go"), authn).Post("/update-profile", userHandler.UpdateProfile)
			r.With(audited("UpdateRole", "user.go"), authn, adminOnly).Post("/update-role", userHandler.UpdateRole)
			r.With(audited("GetAllUsers", "user.go"), authn, adminOnly).Get("/get-all-users", userHandler.GetAllUsers)
			r.With(audited("DeleteAccount", "user.go"), authn).Post("/delete-account", userHandler.DeleteAccount)
		})

		// Storage routes
		r.Route("/storage", func(r chi.Router) {
			r.With(audited("UploadFileAWS", "storage.go"), authn).Post("/upload-file-aws", storageHandler.UploadAWS)
			r.With(audited("UploadFileGCS", "storage.go"), authn).Post("/upload-file-gcs", storageHandler.UploadGCS)
			r.With(audited("UploadFileURIGCS", "storage.go"), authn).Post("/upload-file-uri-gcs", storageHandler.UploadGCSSigned)
			r.With(audited("ListFiles", "storage.go"), authn).Get("/files", storageHandler.ListFiles)
		})
	})

	return &Handler{Router: r}
}

func corsOptions(cfg *config.Config) cors.Options {
	origins := []string{"*"}
	if cfg.FrontendURL != "" {
		origins = []string{cfg.FrontendURL}
	}
	if !cfg.IsProduction() {
		origins = append(origins, "http://localhost:*")
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
