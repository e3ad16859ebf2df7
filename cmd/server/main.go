package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SpeakShift/internal/audit"
	"SpeakShift/internal/auth"
	"SpeakShift/internal/config"
	"SpeakShift/internal/handlers"
	"SpeakShift/internal/mailer"
	"SpeakShift/internal/repo"
	"SpeakShift/internal/server"
	"SpeakShift/internal/service"
	"SpeakShift/internal/storage"

	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()

	// в production — JSON-логгер, иначе development
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize s3 client", "error", err)
	}
	bucket, gcsClient, err := storage.NewGCSBucket(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize gcs client", "error", err)
	}

	// Repositories
	userRepo := repo.NewUserRepository(gormDB)
	addressRepo := repo.NewAddressRepository(gormDB)
	storageRepo := repo.NewStorageRepository(gormDB)
	logRepo := repo.NewLogRepository(gormDB)

	// Services
	issuer := auth.NewIssuer(cfg.AuthSecret, cfg.JWTExpire)
	userService := service.NewUserService(
		userRepo,
		addressRepo,
		issuer,
		mailer.New(cfg, sugar),
		service.UserServiceConfig{
			FrontendURL:      cfg.FrontendURL,
			ResetTokenExpire: cfg.ResetTokenExpire,
			CacheTTL:         cfg.UserCacheTTL,
		},
		sugar,
	)
	storageService := service.NewStorageService(
		storage.NewAWS(s3Client, cfg.AWSBucketName, storageRepo, sugar),
		storage.NewGCS(bucket, cfg.GCSBucketName, storageRepo, sugar),
		storageRepo,
	)
	recorder := audit.NewRecorder(logRepo, sugar)

	h := handlers.NewHandler(userService, storageService, recorder, issuer, func(ctx context.Context) error {
		return repo.Ping(ctx, gormDB)
	}, sugar, cfg)

	sugar.Infow("Config",
		"Env", cfg.Env,
		"BaseURL", cfg.BaseURL,
		"Version", version,
		"BuildDate", buildDate,
		"SMTP", cfg.SMTPEnabled(),
		"AWSBucket", cfg.AWSBucketName,
		"GCSBucket", cfg.GCSBucketName,
	)

	srv := server.New(cfg.BaseURL, h.Router, sugar, cfg.ShutdownTimeout)
	srv.OnShutdown(func(context.Context) error {
		recorder.Wait()
		return nil
	})
	srv.OnShutdown(func(context.Context) error {
		return gcsClient.Close()
	})
	srv.OnShutdown(func(context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := srv.Run(ctx); err != nil {
		sugar.Errorw("Server stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
